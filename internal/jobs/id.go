package jobs

import (
	"strings"

	"github.com/google/uuid"
)

var postingNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/spigell/jobscout/postings"))

// FallbackID derives a stable identifier for postings whose provider did not supply one.
// The same inputs always produce the same ID.
func FallbackID(source Source, parts ...string) string {
	key := string(source) + "\x00" + strings.Join(parts, "\x00")
	return uuid.NewSHA1(postingNamespace, []byte(key)).String()
}
