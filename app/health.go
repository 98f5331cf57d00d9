package app

import (
	"context"

	"github.com/kbukum/voxnote/credential"
	"github.com/kbukum/voxnote/observability"
	"github.com/kbukum/voxnote/recovery"
)

// credentialCheck is degraded, not down, without a key: the server still
// answers saved-note and health requests.
func credentialCheck(p credential.Provider, name string) observability.HealthChecker {
	return observability.HealthCheckFunc(func(ctx context.Context) observability.Health {
		h := observability.Health{Name: "credentials", Status: observability.HealthStatusUp}
		if _, err := credential.Resolve(ctx, p, name); err != nil {
			h.Status = observability.HealthStatusDegraded
			h.Message = "no API credential in " + name
		}
		return h
	})
}

func recoveryCheck(p *recovery.Persister) observability.HealthChecker {
	return observability.HealthCheckFunc(func(ctx context.Context) observability.Health {
		h := observability.Health{
			Name:    "recovery",
			Status:  observability.HealthStatusUp,
			Details: map[string]string{"directory": p.Directory()},
		}
		if _, err := p.List(ctx); err != nil {
			h.Status = observability.HealthStatusDown
			h.Message = err.Error()
		}
		return h
	})
}
