package datasource

import (
	"context"
	"fmt"

	"options-flow/src/analysis"
	"options-flow/src/interfaces"
	"options-flow/src/logger"
	"options-flow/src/models"
	"options-flow/src/utils"
)

// FlowManager serves flow requests from a chain source and the analysis
// facade. It is shared by every served surface.
type FlowManager struct {
	Source   interfaces.IChainSource
	Analyzer *analysis.AnalysisFacade
	Auth     interfaces.IAuthCache
	Logger   *logger.Logger
}

// -----------------------------------------------------------------------------

func NewFlowManager(source interfaces.IChainSource, analyzer *analysis.AnalysisFacade, auth interfaces.IAuthCache, log *logger.Logger) *FlowManager {
	return &FlowManager{
		Source:   source,
		Analyzer: analyzer,
		Auth:     auth,
		Logger:   log,
	}
}

// -----------------------------------------------------------------------------

// GetFlow validates the ticker before touching the network, fetches one
// expiration of the chain and assembles the analytics.
func (m *FlowManager) GetFlow(ctx context.Context, req models.MFlowRequest) (*models.MFlowData, error) {
	ticker, err := utils.NormalizeTicker(req.Ticker)
	if err != nil {
		return nil, err
	}

	if m.Source == nil {
		return nil, fmt.Errorf("no chain source registered")
	}

	snapshot, err := m.Source.FetchChain(ctx, ticker, req.Expiration)
	if err != nil {
		return nil, err
	}
	return m.Analyzer.Assemble(snapshot), nil
}

// -----------------------------------------------------------------------------

func (m *FlowManager) InvalidateAuth() {
	if m.Auth != nil {
		m.Auth.Invalidate()
	}
}

// -----------------------------------------------------------------------------

func (m *FlowManager) AuthCached() bool {
	return m.Auth != nil && m.Auth.IsCached()
}

// -----------------------------------------------------------------------------

// SourceName reports which chain source serves requests, or "" without one.
func (m *FlowManager) SourceName() string {
	if m.Source == nil {
		return ""
	}
	return m.Source.Name()
}
