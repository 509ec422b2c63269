package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateDocumentNumber builds the fallback human-readable number used when
// a recurring payload does not supply one: <PREFIX>-<year>-<unique>.
func GenerateDocumentNumber(prefix string, runAt time.Time) string {
	unique := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("%s-%d-%s", prefix, runAt.Year(), unique)
}
