package usecase

import (
	"github.com/secmon-lab/orgdesk/pkg/domain/interfaces"
	"github.com/secmon-lab/orgdesk/pkg/domain/model/config"
)

type UseCases struct {
	repo       interfaces.Repository
	console    *config.Console
	Employee   *EmployeeUseCase
	Department *DepartmentUseCase
	Integrity  *IntegrityUseCase
	Export     *ExportUseCase
	Auth       AuthUseCaseInterface
}

type Option func(*UseCases)

// WithConsoleConfig overrides page size, avatar set and default status
func WithConsoleConfig(cfg *config.Console) Option {
	return func(uc *UseCases) {
		uc.console = cfg
	}
}

func WithAuth(auth AuthUseCaseInterface) Option {
	return func(uc *UseCases) {
		uc.Auth = auth
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:    repo,
		console: config.DefaultConsole(),
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Employee = NewEmployeeUseCase(repo, uc.console)
	uc.Department = NewDepartmentUseCase(repo, uc.console)
	uc.Integrity = NewIntegrityUseCase(repo)
	uc.Export = NewExportUseCase(repo)

	return uc
}

// Console returns the active console configuration
func (uc *UseCases) Console() *config.Console {
	return uc.console
}
