package media

import (
	"strings"

	"github.com/printforge/printshop-backend/pkg/enums"
)

var mimeTypesByKind = map[enums.MediaKind][]string{
	enums.MediaKindProductImage: {"image/png", "image/jpeg", "image/webp"},
	enums.MediaKindProjectImage: {"image/png", "image/jpeg", "image/webp"},
	// STL files arrive under several mime types depending on the slicer
	// or browser that produced them.
	enums.MediaKindProjectModel: {
		"model/stl",
		"application/sla",
		"application/vnd.ms-pki.stl",
		"application/octet-stream",
	},
}

func isAllowedMime(kind enums.MediaKind, mimeType string) bool {
	allowed, ok := mimeTypesByKind[kind]
	if !ok {
		return false
	}
	for _, candidate := range allowed {
		if strings.EqualFold(candidate, mimeType) {
			return true
		}
	}
	return false
}
