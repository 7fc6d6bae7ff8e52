package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/orgdesk/pkg/domain/types"
)

// DefaultPageSize is the page size of list endpoints when none is configured
const DefaultPageSize = 10

// Console holds the operator-tunable behavior of the admin console
type Console struct {
	PageSize      int
	Avatars       types.AvatarSet
	DefaultStatus types.EmployeeStatus
}

// DefaultConsole returns the configuration used when no config file is given
func DefaultConsole() *Console {
	return &Console{
		PageSize:      DefaultPageSize,
		Avatars:       types.DefaultAvatarSet(),
		DefaultStatus: types.EmployeeStatusActive,
	}
}

func (c *Console) Validate() error {
	if c.PageSize < 1 || c.PageSize > 100 {
		return goerr.New("page size must be between 1 and 100", goerr.V("page_size", c.PageSize))
	}
	if len(c.Avatars) == 0 {
		return goerr.New("at least one avatar is required")
	}
	seen := make(map[types.AvatarID]struct{}, len(c.Avatars))
	for _, a := range c.Avatars {
		if a == "" {
			return goerr.New("avatar ID is empty")
		}
		if _, ok := seen[a]; ok {
			return goerr.New("duplicated avatar ID", goerr.V("avatar", a))
		}
		seen[a] = struct{}{}
	}
	if !c.DefaultStatus.IsValid() {
		return goerr.New("invalid default status", goerr.V("default_status", c.DefaultStatus))
	}
	return nil
}
