package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the provider is down; search still serves keyword results.
	Degraded Status = "degraded"
	// Unhealthy indicates storage is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	storage  StoragePinger
	provider ProviderChecker
}

// New creates a Service. provider can be nil when semantic search is disabled.
func New(storage StoragePinger, provider ProviderChecker) *Service {
	return &Service{storage: storage, provider: provider}
}

// Check runs health checks against all components. Storage failure is fatal
// for the whole service; a failing provider only degrades it.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	status := Healthy

	if err := s.storage.Ping(ctx); err != nil {
		checks["storage"] = CheckError
		status = Unhealthy
	} else {
		checks["storage"] = CheckOK
	}

	if s.provider != nil {
		if err := s.provider.HealthCheck(ctx); err != nil {
			checks["provider"] = CheckError
			if status == Healthy {
				status = Degraded
			}
		} else {
			checks["provider"] = CheckOK
		}
	}

	return Report{Status: status, Checks: checks}
}
