// Command mtg-setxml generates a versioned XML document for each Magic: The
// Gathering set from the card pages of Gatherer.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jeandeaual/mtg-setxml/log"
)

func newLogger(debug bool, level string) (*zap.Logger, error) {
	var zapConf zap.Config

	if debug {
		zapConf = zap.NewDevelopmentConfig()
		zapConf.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	} else {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, err
		}

		zapConf = zap.NewProductionConfig()
		zapConf.Level = zap.NewAtomicLevelAt(lvl)
		zapConf.Encoding = "console"
		zapConf.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
		zapConf.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
		zapConf.EncoderConfig.EncodeCaller = nil
	}

	// Skip 1 caller, since all log calls will be done from mtg-setxml/log
	return zapConf.Build(zap.AddCallerSkip(1))
}

func capitalize(s string) string {
	if len(s) == 0 {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// checkErrs logs the errors of a run and returns an error summarizing them.
func checkErrs(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	for _, err := range errs {
		log.Error(capitalize(err.Error()))
	}

	if len(errs) == 1 {
		return errors.New("1 set failed")
	}
	return fmt.Errorf("%d sets failed", len(errs))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCommand()
	err := cmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, capitalize(err.Error()))
		}
		os.Exit(1)
	}
}
