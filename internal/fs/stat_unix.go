//go:build unix

package fs

import (
	"io/fs"
	"os/user"
	"strconv"
	"syscall"
)

// ownerName looks up the user that owns info. The numeric uid is returned
// when the user database has no entry for it.
func ownerName(info fs.FileInfo) string {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return ""
	}

	uid := strconv.FormatUint(uint64(stat.Uid), 10)
	if u, err := user.LookupId(uid); err == nil {
		return u.Username
	}
	return uid
}
