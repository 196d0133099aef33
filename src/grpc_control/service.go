package grpc_control

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"options-flow/src/config"
	"options-flow/src/helpers"
	"options-flow/src/interfaces"
	"options-flow/src/logger"
	"options-flow/src/models"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ControlService implements the ControlServer interface
type ControlService struct {
	UnimplementedControlServer
	Config     *config.Config
	Flow       interfaces.IFlowService
	Watch      interfaces.IWatchHub
	ConfigPath string
	Logger     *logger.Logger

	// mu guards Config, which SetWatchInterval mutates and saves.
	mu sync.RWMutex
}

// NewControlService creates a new instance of ControlService
func NewControlService(
	cfg *config.Config,
	flow interfaces.IFlowService,
	watch interfaces.IWatchHub,
	cfgPath string,
	log *logger.Logger,
) *ControlService {
	return &ControlService{
		Config:     cfg,
		Flow:       flow,
		Watch:      watch,
		ConfigPath: cfgPath,
		Logger:     log,
	}
}

// -----------------------------------------------------------------------------

// GetFlow takes {"ticker": "AAPL", "expiration": 1742515200} and returns the
// same document as the HTTP data field.
func (s *ControlService) GetFlow(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	flowReq, err := flowRequestFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	data, err := s.Flow.GetFlow(ctx, flowReq)
	if err != nil {
		s.Logger.Info("gRPC: GetFlow %q failed: %v", flowReq.Ticker, err)
		return nil, toStatus(err)
	}

	out, err := toStruct(data)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode flow: %v", err)
	}
	return out, nil
}

// -----------------------------------------------------------------------------

func (s *ControlService) InvalidateAuth(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	s.Flow.InvalidateAuth()
	s.Logger.Info("gRPC: provider session invalidated")
	return structpb.NewStruct(map[string]interface{}{
		"success":     true,
		"auth_cached": s.Flow.AuthCached(),
	})
}

// -----------------------------------------------------------------------------

func (s *ControlService) GetStatus(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	st := models.MServiceStatus{
		Status:     "ok",
		Source:     s.Flow.SourceName(),
		AuthCached: s.Flow.AuthCached(),
	}
	if s.Watch != nil {
		st.WatchClients = s.Watch.ClientCount()
	}

	out, err := toStruct(st)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode status: %v", err)
	}
	s.mu.RLock()
	interval := s.Config.Watch.IntervalSeconds
	s.mu.RUnlock()
	out.Fields["watch_interval_seconds"] = structpb.NewNumberValue(float64(interval))
	return out, nil
}

// -----------------------------------------------------------------------------

// SetWatchInterval takes {"interval_seconds": N}, applies it to new watch
// subscriptions and persists it to the config file.
func (s *ControlService) SetWatchInterval(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	v, ok := req.GetFields()["interval_seconds"]
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "interval_seconds is required")
	}
	seconds := v.GetNumberValue()
	if seconds < 1 || seconds != math.Trunc(seconds) {
		return nil, status.Errorf(codes.InvalidArgument, "interval_seconds must be a positive integer, got %v", seconds)
	}

	s.mu.Lock()
	s.Config.Watch.IntervalSeconds = int(seconds)
	if s.Watch != nil {
		s.Watch.SetPollInterval(time.Duration(seconds) * time.Second)
	}

	persisted := false
	if s.ConfigPath != "" {
		if err := s.Config.Save(s.ConfigPath); err != nil {
			s.Logger.Error("gRPC: failed to save config: %v", err)
		} else {
			persisted = true
		}
	}
	s.mu.Unlock()

	s.Logger.Info("gRPC: watch interval set to %ds", int(seconds))
	return structpb.NewStruct(map[string]interface{}{
		"success":          true,
		"interval_seconds": seconds,
		"persisted":        persisted,
		"message":          fmt.Sprintf("Watch interval set to %ds", int(seconds)),
	})
}

// -----------------------------------------------------------------------------
// Conversion
// -----------------------------------------------------------------------------

func flowRequestFromStruct(req *structpb.Struct) (models.MFlowRequest, error) {
	fields := req.GetFields()
	out := models.MFlowRequest{Ticker: fields["ticker"].GetStringValue()}

	if v, ok := fields["expiration"]; ok {
		if _, isNull := v.GetKind().(*structpb.Value_NullValue); !isNull {
			n, isNumber := v.GetKind().(*structpb.Value_NumberValue)
			if !isNumber || n.NumberValue != math.Trunc(n.NumberValue) {
				return out, fmt.Errorf("expiration must be unix seconds")
			}
			exp := int64(n.NumberValue)
			out.Expiration = &exp
		}
	}
	return out, nil
}

// toStruct round-trips v through its JSON form so field names match the HTTP API.
func toStruct(v interface{}) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

// toStatus maps flow errors onto gRPC codes in line with the HTTP statuses.
func toStatus(err error) error {
	switch helpers.HTTPStatus(err) {
	case http.StatusBadRequest:
		return status.Error(codes.InvalidArgument, err.Error())
	case http.StatusNotFound:
		return status.Error(codes.NotFound, err.Error())
	case http.StatusBadGateway:
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
