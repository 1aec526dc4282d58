package http

import (
	"github.com/fyrsmithlabs/sitesmith/internal/deploy"
	"github.com/fyrsmithlabs/sitesmith/internal/intake"
	"github.com/fyrsmithlabs/sitesmith/internal/store"
)

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// GenerateRequest is the request body for POST /api/v1/generate.
type GenerateRequest struct {
	Intake intake.IntakeForm `json:"intake"`
	Deploy *DeployRequest    `json:"deploy,omitempty"`
}

// DeployRequest selects a publish target for a generation.
type DeployRequest struct {
	Provider string `json:"provider"`
	APIKey   string `json:"apiKey,omitempty"`
	SiteName string `json:"siteName,omitempty"`
}

func (d *DeployRequest) toDeploy() *deploy.Request {
	if d == nil || d.Provider == "" {
		return nil
	}
	return &deploy.Request{Provider: d.Provider, APIKey: d.APIKey, SiteName: d.SiteName}
}

// GenerationsResponse is the response body for GET /api/v1/generations.
type GenerationsResponse struct {
	Generations []*store.Record `json:"generations"`
}
