package app

import "heroes/internal/models"

func placeholder(color, label string) string {
	return "https://via.placeholder.com/300x400/" + color + "/ffffff?text=" + label
}

// seedCharacters is loaded into an empty catalog at startup when SEED_DATA is on.
func seedCharacters() []models.Character {
	hero := func(name, realName, origin, universe, firstAppearance, powers, description, image string) models.Character {
		return models.Character{
			Name:            name,
			RealName:        realName,
			Origin:          origin,
			Universe:        universe,
			Affiliation:     "Justice League",
			FirstAppearance: firstAppearance,
			Status:          models.StatusActive,
			Alignment:       models.AlignmentHero,
			Powers:          powers,
			Description:     description,
			ImageURL:        image,
		}
	}

	return []models.Character{
		hero("Superman", "Clark Kent", "Krypton", "Earth-1", "1938",
			"Super strength, flight, X-ray vision, heat vision, super speed, invulnerability",
			"The Last Son of Krypton, defender of Earth and a symbol of hope for all humanity.",
			placeholder("0066cc", "Superman")),
		hero("Batman", "Bruce Wayne", "Gotham City", "Earth-1", "1939",
			"Genius intellect, martial arts, advanced technology, master detective",
			"The Dark Knight of Gotham City, using his wealth and intellect to fight crime.",
			placeholder("333333", "Batman")),
		hero("Wonder Woman", "Diana Prince", "Themyscira", "Earth-1", "1941",
			"Super strength, flight, Lasso of Truth, indestructible bracelets, superhuman speed",
			"Amazon princess and ambassador of peace, a divine warrior with a hero's heart.",
			placeholder("cc0066", "Wonder+Woman")),
		hero("The Flash", "Barry Allen", "Central City", "Earth-1", "1956",
			"Super speed, time travel, molecular vibration, Speed Force connection",
			"The fastest man alive, bound to the Speed Force and protector of Central City.",
			placeholder("ff0000", "The+Flash")),
		hero("Green Lantern", "Hal Jordan", "Coast City", "Earth-1", "1959",
			"Power ring, green energy constructs, flight, indomitable will",
			"Member of the Green Lantern Corps, guardian of space sector 2814.",
			placeholder("00cc00", "Green+Lantern")),
		hero("Aquaman", "Arthur Curry", "Atlantis", "Earth-1", "1941",
			"Marine telepathy, super strength, underwater breathing, Trident of Neptune",
			"King of Atlantis and protector of the oceans, bridge between land and sea.",
			placeholder("0099cc", "Aquaman")),
		hero("Cyborg", "Victor Stone", "Detroit", "Earth-1", "1980",
			"Alien technology, computer interface, sonic cannons, super strength",
			"Half man, half machine, linked to Mother Box technology and a vital member of the League.",
			placeholder("666666", "Cyborg")),
		hero("Green Arrow", "Oliver Queen", "Star City", "Earth-1", "1941",
			"Master archer, trick arrows, martial arts, acrobatics",
			"The Emerald Archer, champion of the oppressed and social crusader of Star City.",
			placeholder("009900", "Green+Arrow")),
		hero("Martian Manhunter", "J'onn J'onzz", "Mars", "Earth-1", "1955",
			"Telepathy, shapeshifting, invisibility, intangibility, super strength, flight",
			"Last of the Green Martians, detective and the emotional heart of the Justice League.",
			placeholder("990000", "Martian+Manhunter")),
		hero("Shazam", "Billy Batson", "Fawcett City", "Earth-S", "1940",
			"Strength of Hercules, speed of Mercury, stamina of Atlas, power of Zeus, courage of Achilles, wisdom of Solomon",
			"A young hero granted the power of the ancient gods, transformed by shouting 'Shazam!'",
			placeholder("ffcc00", "Shazam")),
	}
}
