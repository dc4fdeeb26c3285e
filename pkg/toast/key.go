package toast

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// KeyPrefix starts every generated key.
const KeyPrefix = "toast-"

var (
	keyMu       sync.Mutex
	lastKeyTime int64
)

// GenerateKey returns a new notification key of the form
// "toast-<unix millis>-<random suffix>".
//
// The millisecond component never goes backwards within a process, so keys
// sort by creation time. Uniqueness comes from the random suffix.
func GenerateKey() string {
	keyMu.Lock()
	now := time.Now().UnixMilli()
	if now < lastKeyTime {
		now = lastKeyTime
	}
	lastKeyTime = now
	keyMu.Unlock()

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return KeyPrefix + strconv.FormatInt(now, 10) + "-" + suffix
}
