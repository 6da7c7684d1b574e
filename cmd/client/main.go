package main

import (
	"bufio"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jaehyuk-c/voiceduel-client/internal/audio"
	"github.com/jaehyuk-c/voiceduel-client/internal/battle"
	"github.com/jaehyuk-c/voiceduel-client/internal/capture"
	"github.com/jaehyuk-c/voiceduel-client/internal/catalog"
	"github.com/jaehyuk-c/voiceduel-client/internal/config"
	"github.com/jaehyuk-c/voiceduel-client/internal/duel"
	"github.com/jaehyuk-c/voiceduel-client/internal/history"
	"github.com/jaehyuk-c/voiceduel-client/internal/httpapi"
	"github.com/jaehyuk-c/voiceduel-client/internal/scoring"
	"github.com/jaehyuk-c/voiceduel-client/internal/ws"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("client exited", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return err
	}
	char, ok := cat.Character(cfg.CharacterID)
	if !ok {
		return errors.New("unknown character id: " + cfg.CharacterID)
	}

	store, err := history.Open(cfg.HistoryDBPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	client, err := ws.Dial(ctx, cfg.ServerWSURL, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	// Stand-in recognizer: reads the "spoken" phrase from stdin. The real
	// client feeds recognized text from the platform recognizer here.
	stdin := bufio.NewReader(os.Stdin)
	recorder := audio.NewRecorder(audio.NewDevice(), func(ctx context.Context) (string, error) {
		line, err := stdin.ReadString('\n')
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(line), nil
	})

	scorer := scoring.NewClient(cfg.ScoringURL, cfg.ScoringTimeout)

	orch := capture.New(ctx, capture.DefaultConfig(), capture.Profile{
		CharacterID:    char.ID,
		SkillPhrase:    char.Skill.TriggerPhrase,
		UltimatePhrase: char.Ultimate.TriggerPhrase,
	}, recorder, scorer, client, capture.Events{
		OnCountdown: func(step int) {
			logger.Info("countdown", zap.Int("step", step))
		},
		OnCaptureFailed: func(err error) {
			logger.Warn("capture failed, turn forfeited", zap.Error(err))
		},
	}, logger)

	d := duel.New(ctx, orch, duel.DefaultConfig(), logger)
	orch.BindSession(d.Inbox())

	out := make(chan duel.Snapshot, 16)
	d.Inbox() <- duel.Join{ObserverID: uuid.NewString(), Outbox: out}

	d.Inbox() <- duel.Start{Params: battle.InitParams{
		SessionID:         uuid.NewString(),
		LocalCharacterID:  cfg.CharacterID,
		RemoteCharacterID: cfg.RemoteCharacterID,
		MaxHP:             cfg.MaxHP,
		LocalGoesFirst:    cfg.LocalGoesFirst,
	}}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return client.Run(gctx, d.Inbox())
	})

	g.Go(func() error {
		for snap := range out {
			if battle.ContainsEffect(snap.Effects, battle.FxFinished) && snap.State.Result != nil {
				rec := history.Record{
					SessionID:  snap.State.SessionID,
					WinnerID:   snap.State.Result.WinnerID,
					LoserID:    snap.State.Result.LoserID,
					EloChange:  snap.State.Result.EloChange,
					FinishedAt: time.Now(),
				}
				if err := store.RecordResult(gctx, rec); err != nil {
					logger.Error("failed to record match result", zap.Error(err))
				}
			}
		}
		return nil
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: httpapi.SetupRoutes(d, store)}
	g.Go(func() error {
		logger.Info("debug api listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		d.Inbox() <- duel.Shutdown{}
		return nil
	})

	return g.Wait()
}
