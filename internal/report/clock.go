package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Clock abstracts time retrieval so business logic is deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// IDGenerator abstracts offline ID generation so tests are deterministic.
type IDGenerator interface {
	New(now time.Time) string
}

// OfflineIDGenerator produces queue IDs of the form
// offline_<unix-millis>_<random-token>.
type OfflineIDGenerator struct{}

func (OfflineIDGenerator) New(now time.Time) string {
	token := strings.ReplaceAll(uuid.New().String(), "-", "")[:9]
	return fmt.Sprintf("offline_%d_%s", now.UnixMilli(), token)
}
