package transform

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/kwatalab/bsm/internal/types"
)

// legacyHostMarker identifies image references served by the retired CDN.
const legacyHostMarker = "onrender.com"

// newImagePathPrefix is the path convention of the new file service.
const newImagePathPrefix = "/settings/files/"

// RewriteImage converts a legacy image reference into the new path
// convention. A reference is in legacy form when it contains the legacy
// host marker and an id query parameter holding the file identifier.
//
// Returns migrated=true when the reference was rewritten. A legacy-looking
// reference that cannot be parsed is passed through unchanged with a
// non-nil error for the caller to log; it is never discarded.
func RewriteImage(ref string) (img types.Image, migrated bool, err error) {
	if !strings.Contains(ref, legacyHostMarker) {
		return types.Image{URL: ref}, false, nil
	}

	u, perr := url.Parse(ref)
	if perr != nil {
		return types.Image{URL: ref}, false, fmt.Errorf("legacy image %q: %w", ref, perr)
	}
	fileID := u.Query().Get("id")
	if fileID == "" {
		return types.Image{URL: ref}, false, fmt.Errorf("legacy image %q: no id parameter", ref)
	}

	return types.Image{FileID: fileID, URL: newImagePathPrefix + fileID}, true, nil
}
