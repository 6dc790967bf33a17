package audio

import (
	"context"

	"go.uber.org/zap"
)

// ServiceName identifies audio in the service hub
const ServiceName = "audio"

// Service wraps Player; a missing audio device leaves it disabled rather than failing startup
type Service struct {
	cfg    Config
	log    *zap.Logger
	player *Player
	out    Output
}

// NewService creates the audio service for the system speaker
func NewService(cfg Config, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{cfg: cfg, log: log, out: speakerOutput{}}
}

func (s *Service) Name() string           { return ServiceName }
func (s *Service) Dependencies() []string { return nil }

// Init accepts a MuteOption; a muted player still opens the output so it can be unmuted later
func (s *Service) Init(args ...any) error {
	s.player = newPlayer(s.cfg, s.out, s.log)
	for _, arg := range args {
		if m, ok := arg.(MuteOption); ok && bool(m) {
			s.player.SetMuted(true)
		}
	}
	return nil
}

// Start opens the output; failure is logged and audio stays off
// A disabled config never touches the device
func (s *Service) Start(ctx context.Context) error {
	if s.player == nil {
		return nil
	}
	if !s.cfg.Enabled {
		s.log.Info("audio disabled by config")
		return nil
	}
	if err := s.player.Open(); err != nil {
		s.log.Warn("audio disabled", zap.Error(err))
	}
	return nil
}

// Stop closes the output
func (s *Service) Stop() error {
	if s.player != nil {
		s.player.Close()
	}
	return nil
}

// Player returns the cue player, nil before Init
func (s *Service) Player() *Player {
	return s.player
}

// MuteOption passed to Init starts the service muted
type MuteOption bool
