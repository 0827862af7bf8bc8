package models

import "strconv"

// UID identifies a cached file record. Ids are unique for the life of the process.
type UID uint64

func (id UID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}
