// Package catalog lists the gift collections the mini-app offers and the
// models within each one. The catalogue feeds the page filters; listings are
// not validated against it.
package catalog

import "sort"

var collections = map[string][]string{
	"Ric Flair":       {"Ric Flair"},
	"Cattea Life":     {"Cattea Chaos"},
	"Lazy & Rich":     {"Sloth Capital", "Chill or thrill"},
	"PUCCA":           {"PUCCA Moods"},
	"Kudai":           {"GMI", "NGMI"},
	"Lost Dogs":       {"Magic of the Way", "Lost Memeries"},
	"Bored Stickers":  {"CNY 2092", "2092", "3151", "3278", "4017", "5824", "6527", "9287", "9765", "9780"},
	"Blum":            {"Cap", "Cat", "Bunny", "No", "General", "Worker", "Cook", "Curly"},
	"Smeshariki":      {"Chamomile Valley"},
	"WAGMI HUB":       {"EGG & HAMMER", "WAGMI AI AGENT"},
	"Doodles":         {"Doodles Dark Mode"},
	"Flappy Bird":     {"Well known one", "Blue Wings", "Light Glide", "Frost Flap", "Blush Flight", "Ruby Wings"},
	"SUNDOG":          {"TO THE SUN"},
	"Lil Pudgys":      {"Lil Pudgys x Baby Shark"},
	"Not Pixel":       {"Random memes", "Cute pack", "Grass Pixel", "Mac Pixel", "Super Pixel", "DOGS Pixel", "Diamond Pixel", "Pixanos", "Retro Pixel", "Error Pixel", "Vice Pixel", "Pixioznik", "Zompixel", "Pixel phrases", "Films memes", "Smileface pack", "Tournament S1"},
	"BabyDoge":        {"Mememania"},
	"Pudgy & Friends": {"Pengu x Baby Shark"},
	"Pudgy Penguins":  {"Pengu Valentines", "Blue Pengu", "Cool Blue Pengu", "Pengu CNY"},
	"DOGS OG":         {"Not Cap", "Not Coin", "Panama Hat", "Toddler", "Cherry Glasses", "Dogtor", "Kamikaze", "King", "Blue Eyes Hat", "Emo Boy", "Cyclist", "Scary Eyes", "Nose Glasses", "Strawberry Hat", "Gnome", "One Piece Sanji", "Diver", "Robber", "Sheikh", "Bow Tie", "Hypnotist", "Witch", "Teletubby", "Tin Foil Hat", "Cook", "Tubeteyka", "Alumni", "Anime Ears", "Scarf", "Bodyguard", "Tank Driver", "Asterix", "Nerd", "Tattoo Artist", "Pilot", "Jester", "Van Dogh", "Baseball Cap", "Green Hair", "Smile", "Gentleman", "Baseball Bat", "Alien", "Sherlock Holmes", "Extra Eyes", "Dog Tyson", "Termidogtor", "Frog Hat", "Ushanka", "Sock Head", "Noodles", "Ice Cream", "Shaggy", "Pink Bob", "Viking", "Knitted Hat", "Toast Bread", "Princess", "Santa Dogs", "Newsboy Cap", "Google Intern Hat", "Orange Hat", "Hello Kitty", "Sharky Dog", "Frog Glasses", "Duck", "KFC", "Unicorn"},
}

// Collection is one catalogue entry.
type Collection struct {
	Name   string   `json:"name"`
	Models []string `json:"models"`
}

// All returns every collection sorted by name. The result is a copy.
func All() []Collection {
	names := Names()
	out := make([]Collection, 0, len(names))
	for _, name := range names {
		out = append(out, Collection{Name: name, Models: Models(name)})
	}
	return out
}

// Names returns the collection names in sorted order.
func Names() []string {
	names := make([]string, 0, len(collections))
	for name := range collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Models returns the models of a collection, or nil if it is not catalogued.
func Models(collection string) []string {
	models, ok := collections[collection]
	if !ok {
		return nil
	}
	return append([]string(nil), models...)
}

// Has reports whether model belongs to collection.
func Has(collection, model string) bool {
	for _, m := range collections[collection] {
		if m == model {
			return true
		}
	}
	return false
}
