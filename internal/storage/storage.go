package storage

import "errors"

var (
	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")
)

var (
	ErrPageNotFound     = errors.New("page not found")
	ErrSlugTaken        = errors.New("slug already taken")
	ErrTemplateNotFound = errors.New("block template not found")
	ErrMediaNotFound    = errors.New("media not found")
	ErrMediaInUse       = errors.New("media is referenced by a page")
)

var (
	ErrFileTooLarge    = errors.New("file size exceeds limit")
	ErrInvalidFileType = errors.New("invalid file type")
	ErrFileNotFound    = errors.New("file not found")
)
