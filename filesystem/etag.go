package filesystem

import (
	"hash/fnv"
	"strconv"
)

// ETagDisabled is the reserved sentinel meaning "fingerprint checking
// explicitly disabled". ETag never produces it for live data: derived tags
// are base-36 renderings of a 32-bit hash and therefore at most 7
// characters, shorter than this constant.
const ETagDisabled = "disabled"

// ETag derives the opaque optimistic-concurrency fingerprint from a
// modification time (epoch milliseconds) and a size in bytes. Identical
// inputs always yield identical tags. When either input is absent (zero
// mtime or negative size) it returns "", meaning no optimistic check is
// possible; callers must not treat that as a mismatch.
func ETag(mtime, size int64) string {
	if mtime == 0 || size < 0 {
		return ""
	}
	h := fnv.New32a()
	h.Write(strconv.AppendInt(nil, mtime, 10))
	h.Write(strconv.AppendInt(nil, size, 10))
	return strconv.FormatUint(uint64(h.Sum32()), 36)
}
