package event

import "time"

// Seed provides the galactic log served by the guide.
func Seed() []Event {
	return []Event{
		// past
		{
			ID:          1,
			Name:        "Lançamento do Sputnik 1",
			Date:        mustDate("1957-10-04T19:28:00Z"),
			Location:    "Baikonur, Terra",
			Topic:       "Início da Era Espacial",
			Description: "O primeiro satélite artificial da humanidade é lançado, marcando o início da corrida espacial.",
		},
		{
			ID:          2,
			Name:        "Primeiro Homem na Lua",
			Date:        mustDate("1969-07-20T20:17:00Z"),
			Location:    "Mar da Tranquilidade, Lua",
			Topic:       "Conquista Lunar",
			Description: "A Apollo 11 pousa e Neil Armstrong se torna o primeiro humano a caminhar na superfície lunar.",
		},
		{
			ID:          3,
			Name:        "Lançamento do Telescópio Hubble",
			Date:        mustDate("1990-04-24T12:33:00Z"),
			Location:    "Órbita Terrestre",
			Topic:       "Astronomia",
			Description: "O Telescópio Espacial Hubble é implantado, revolucionando nossa visão do cosmos.",
		},
		{
			ID:          4,
			Name:        "Pouso do Rover Curiosity em Marte",
			Date:        mustDate("2012-08-06T05:17:00Z"),
			Location:    "Cratera Gale, Marte",
			Topic:       "Exploração de Marte",
			Description: "O rover Curiosity pousa com sucesso em Marte para procurar por evidências de vida passada.",
		},
		// future
		{
			ID:          5,
			Name:        "Inauguração da Primeira Colônia em Marte",
			Date:        mustDate("2077-03-15T12:00:00Z"),
			Location:    "Nova Olympus, Marte",
			Topic:       "Colonização Planetária",
			Description: "A primeira cidade autossuficiente em Marte, Nova Olympus, é oficialmente inaugurada.",
		},
		{
			ID:          6,
			Name:        "Conferência de Mineração de Asteroides",
			Date:        mustDate("2142-06-10T09:00:00Z"),
			Location:    "Estação Ceres, Cinturão de Asteroides",
			Topic:       "Economia Espacial",
			Description: "Corporações de todo o sistema solar se reúnem para discutir a logística da mineração de asteroides.",
		},
		{
			ID:          7,
			Name:        "Descoberta de Vida Microbiana em Europa",
			Date:        mustDate("2205-11-01T15:30:00Z"),
			Location:    "Oceano Galileo, Europa (Lua de Júpiter)",
			Topic:       "Astrobiologia",
			Description: "Sondas robóticas confirmam a existência de vida microbiana nos oceanos sob a crosta de gelo de Europa.",
		},
		{
			ID:          8,
			Name:        "Grande Prêmio de Corridas Solares",
			Date:        mustDate("2310-09-25T14:00:00Z"),
			Location:    "Anéis de Saturno",
			Topic:       "Esportes Espaciais",
			Description: "A corrida anual de naves movidas a vento solar através dos majestosos anéis de Saturno.",
		},
	}
}

func mustDate(raw string) time.Time {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		panic(err)
	}
	return t
}
