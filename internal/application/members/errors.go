package members

import "errors"

var (
	ErrNoMembers       = errors.New("No members found")
	ErrMemberNotFound  = errors.New("Member not found")
	ErrDuplicateMember = errors.New("Member with this phone already exists")
)
