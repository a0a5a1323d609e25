package fpl

import (
	"fmt"
	"strings"
)

// PlayerImageURL builds the headshot URL from the bootstrap "photo" field
// ("12345.jpg"); the CDN only serves png.
func PlayerImageURL(photo string) string {
	photo = strings.TrimSuffix(photo, ".jpg") + ".png"
	return "https://resources.premierleague.com/premierleague/photos/players/110x140/p" + photo
}

func TeamBadgeURL(teamCode int) string {
	return fmt.Sprintf("https://resources.premierleague.com/premierleague/badges/100/t%d@x2.png", teamCode)
}

func TeamShirtURL(teamCode int, goalkeeper bool) string {
	modifier := ""
	if goalkeeper {
		modifier = "_1"
	}
	return fmt.Sprintf("https://fantasy.premierleague.com/dist/img/shirts/standard/shirt_%d%s-220.webp", teamCode, modifier)
}
