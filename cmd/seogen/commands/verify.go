package commands

import (
	"fmt"
	"io"
	"os"

	"git.home.luguber.info/inful/seogen/internal/config"
	"git.home.luguber.info/inful/seogen/internal/foundation/errors"
	"git.home.luguber.info/inful/seogen/internal/verify"
)

// VerifyCmd implements the 'verify' command.
type VerifyCmd struct {
	Output  string `short:"o" help:"Output directory to inspect"`
	Samples int    `name:"samples" help:"Documents checked per category (defaults to generation.verify_samples)"`
}

func (v *VerifyCmd) Run(_ *Global, root *CLI) error {
	cfg, err := LoadConfig(root)
	if err != nil {
		return err
	}
	if v.Output != "" {
		cfg.Output.Dir = v.Output
	}
	if v.Samples > 0 {
		cfg.Generation.VerifySamples = v.Samples
	}
	return RunVerify(cfg, os.Stdout)
}

// RunVerify checks cfg.Output.Dir and prints counts, sampled titles and issues.
// Issues map to the build-failure exit code, an empty tree to the no-success code.
func RunVerify(cfg *config.Config, stdout io.Writer) error {
	paths := make([]string, 0, len(cfg.StaticPages))
	for _, sp := range cfg.StaticPages {
		paths = append(paths, sp.Path)
	}
	res, err := verify.Run(cfg.Output.Dir, verify.Layout{StaticPaths: paths}, cfg.Generation.VerifySamples)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(stdout, "Pages in %s:\n", cfg.Output.Dir)
	for _, cat := range []string{verify.CategoryCity, verify.CategoryProduct, verify.CategoryStatic} {
		_, _ = fmt.Fprintf(stdout, "  %-8s %d\n", cat+":", res.Counts[cat])
	}
	if res.Other > 0 {
		_, _ = fmt.Fprintf(stdout, "  %-8s %d\n", "other:", res.Other)
	}
	for _, s := range res.Samples {
		_, _ = fmt.Fprintf(stdout, "  sample %s: %s\n", s.Path, s.Title)
	}

	switch {
	case !res.OK():
		_, _ = fmt.Fprintf(stdout, "Issues (%d):\n", len(res.Issues))
		for _, is := range res.Issues {
			_, _ = fmt.Fprintf(stdout, "  %s: %s\n", is.Path, is.Problem)
		}
		return &ExitError{Code: errors.ExitBuildFailure}
	case res.Total() == 0:
		_, _ = fmt.Fprintln(stdout, "No generated pages found")
		return &ExitError{Code: errors.ExitNoSuccess}
	}
	_, _ = fmt.Fprintln(stdout, "OK")
	return nil
}
