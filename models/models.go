package models

type User struct {
	Id           string
	Email        string
	Username     string
	FullName     string
	PasswordHash string
	Created      int64
	Updated      int64
}

type Note struct {
	Id      string
	OwnerId string
	Title   string
	Content string
	Color   string
	Tags    []string
	Pinned  bool
	Created int64
	Updated int64
}

// Permission is the level a share grant confers on a non-owner.
// Write implies read.
type Permission string

const (
	PermissionRead  Permission = "read"
	PermissionWrite Permission = "write"
)

type ShareGrant struct {
	NoteId     string
	GranteeId  string
	Permission Permission
	Created    int64
	Updated    int64
}

type Collection struct {
	Id          string
	OwnerId     string
	Name        string
	Description string
	Color       string
	Created     int64
	Updated     int64
}

// CollectionMember links a note into a collection. AddedAt fixes the
// collection's declared ordering.
type CollectionMember struct {
	CollectionId string
	NoteId       string
	AddedAt      int64
}

// TagCount is the derived tag view: a distinct tag string across a user's
// notes and how many of their notes carry it. Tags are never stored on
// their own.
type TagCount struct {
	Name      string
	NoteCount int
}
