package youtube

import "fmt"

// categories maps YouTube category IDs to their names.
var categories = map[string]string{
	"1":  "Film & Animation",
	"2":  "Autos & Vehicles",
	"10": "Music",
	"15": "Pets & Animals",
	"17": "Sports",
	"18": "Short Movies",
	"19": "Travel & Events",
	"20": "Gaming",
	"21": "Videoblogging",
	"22": "People & Blogs",
	"23": "Comedy",
	"24": "Entertainment",
	"25": "News & Politics",
	"26": "Howto & Style",
	"27": "Education",
	"28": "Science & Technology",
	"29": "Nonprofits & Activism",
	"30": "Movies",
	"31": "Anime/Animation",
	"32": "Action/Adventure",
	"33": "Classics",
	"34": "Comedy",
	"35": "Documentary",
	"36": "Drama",
	"37": "Family",
	"38": "Foreign",
	"39": "Horror",
	"40": "Sci-Fi/Fantasy",
	"41": "Thriller",
	"42": "Shorts",
	"43": "Shows",
	"44": "Trailers",
}

// ResolveCategory accepts a numeric category ID or a category name and
// returns the corresponding ID.
func ResolveCategory(category string) (string, error) {
	for id, name := range categories {
		if id == category || name == category {
			return id, nil
		}
	}
	return "", fmt.Errorf("invalid category ID or name: %q", category)
}

// ValidPrivacy reports whether the privacy status is one the API accepts.
func ValidPrivacy(privacy string) bool {
	switch privacy {
	case "public", "private", "unlisted":
		return true
	}
	return false
}
