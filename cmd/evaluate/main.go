// Command evaluate scores recorded match snapshots offline with the same
// engine the scanner uses. It reads one snapshot or a JSON array of them
// and prints one verdict per snapshot.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"

	"github.com/okian/goalwatch/internal/config"
	"github.com/okian/goalwatch/internal/domain/engine"
	"github.com/okian/goalwatch/internal/domain/model"
)

type verdict struct {
	FixtureID int64                 `json:"fixture_id"`
	Qualified bool                  `json:"qualified"`
	Reason    engine.Reason         `json:"reason"`
	Score     int                   `json:"score"`
	Threshold model.Threshold       `json:"threshold"`
	Stability model.StabilityResult `json:"stability"`
	Result    *model.AnalysisResult `json:"result,omitempty"`
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if crerr.Is(err, flag.ErrHelp) {
			return
		}
		os.Stderr.WriteString("evaluate: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("evaluate", flag.ContinueOnError)
	var (
		configPath = fs.String("config", "", "YAML config file (engine section is used)")
		input      = fs.String("in", "-", "Snapshot file, - for stdin")
		pretty     = fs.Bool("pretty", true, "Indent output")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadFile(context.Background(), *configPath)
	if err != nil {
		return err
	}
	eng, err := engine.New(cfg.Engine)
	if err != nil {
		return crerr.Wrap(err, "engine")
	}

	raw, err := read(*input, stdin)
	if err != nil {
		return err
	}
	snaps, err := decode(raw)
	if err != nil {
		return err
	}

	out := make([]verdict, 0, len(snaps))
	for i := range snaps {
		out = append(out, evaluate(eng, snaps[i]))
	}

	var body []byte
	if *pretty {
		body, err = sonic.ConfigStd.MarshalIndent(out, "", "  ")
	} else {
		body, err = sonic.Marshal(out)
	}
	if err != nil {
		return crerr.Wrap(err, "encode")
	}
	_, err = fmt.Fprintln(stdout, string(body))
	return err
}

func read(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		b, err := io.ReadAll(stdin)
		return b, crerr.Wrap(err, "read stdin")
	}
	b, err := os.ReadFile(path)
	return b, crerr.Wrapf(err, "read %s", path)
}

var validate = validator.New()

// decode accepts a single snapshot object or an array of them.
func decode(raw []byte) ([]model.Snapshot, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, crerr.New("empty input")
	}

	var snaps []model.Snapshot
	if raw[0] == '[' {
		if err := sonic.Unmarshal(raw, &snaps); err != nil {
			return nil, crerr.Wrap(err, "decode snapshots")
		}
	} else {
		var s model.Snapshot
		if err := sonic.Unmarshal(raw, &s); err != nil {
			return nil, crerr.Wrap(err, "decode snapshot")
		}
		snaps = append(snaps, s)
	}

	for i := range snaps {
		if err := validate.Struct(snaps[i]); err != nil {
			return nil, crerr.Wrapf(err, "snapshot %d", i)
		}
	}
	return snaps, nil
}

func evaluate(eng *engine.Engine, snap model.Snapshot) verdict { //nolint:gocritic // hugeParam
	form := eng.Config().Form.Neutral()
	if snap.Form != nil {
		form = *snap.Form
	}
	v := eng.Evaluate(engine.Input{
		Fixture: snap.Fixture,
		Stats:   snap.Statistics,
		Events:  snap.Events,
	}, form)

	return verdict{
		FixtureID: snap.Fixture.ID,
		Qualified: v.Qualified(),
		Reason:    v.Reason,
		Score:     v.Score,
		Threshold: v.Threshold,
		Stability: v.Stability,
		Result:    v.Result,
	}
}
