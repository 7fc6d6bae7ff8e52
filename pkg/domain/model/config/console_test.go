package config_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/orgdesk/pkg/domain/model/config"
	"github.com/secmon-lab/orgdesk/pkg/domain/types"
)

func TestConsole_Validate(t *testing.T) {
	gt.NoError(t, config.DefaultConsole().Validate())

	tests := []struct {
		name   string
		modify func(c *config.Console)
	}{
		{name: "zero page size", modify: func(c *config.Console) { c.PageSize = 0 }},
		{name: "huge page size", modify: func(c *config.Console) { c.PageSize = 1000 }},
		{name: "no avatars", modify: func(c *config.Console) { c.Avatars = nil }},
		{name: "empty avatar", modify: func(c *config.Console) { c.Avatars = types.AvatarSet{""} }},
		{name: "duplicated avatar", modify: func(c *config.Console) { c.Avatars = types.AvatarSet{"a", "a"} }},
		{name: "unknown status", modify: func(c *config.Console) { c.DefaultStatus = "Paused" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := config.DefaultConsole()
			tt.modify(c)
			gt.Error(t, c.Validate())
		})
	}
}
