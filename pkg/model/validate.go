package model

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Limits on persisted fields.
const (
	MaxIDLength          = 128
	MaxTitleLength       = 500
	MaxDescriptionLength = 5000
	MaxNameLength        = 200
)

// Validate checks a single node and, recursively, its children.
func (n Node) Validate() error {
	return validation.ValidateStruct(&n,
		validation.Field(&n.ID, validation.Required, validation.Length(1, MaxIDLength)),
		validation.Field(&n.Title, validation.Length(0, MaxTitleLength)),
		validation.Field(&n.Role, validation.Required, validation.In(RoleAI, RoleHuman, RoleHybrid)),
		validation.Field(&n.Description, validation.Length(0, MaxDescriptionLength)),
		validation.Field(&n.Children),
	)
}

// Validate checks every node and rejects duplicate ids.
func (m *Map) Validate() error {
	err := validation.ValidateStruct(m,
		validation.Field(&m.Name, validation.Length(0, MaxNameLength)),
		validation.Field(&m.Stages),
	)
	if err != nil {
		return err
	}
	if len(m.dups) > 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateID, strings.Join(m.dups, ", "))
	}
	return nil
}
