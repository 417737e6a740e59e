package cbcsuite

import (
	"fmt"
	"text/tabwriter"

	json "github.com/nikkolasg/hexjson"
	"github.com/urfave/cli/v2"

	"github.com/drand/cbcsuite/common/log"
	"github.com/drand/cbcsuite/internal/config"
	"github.com/drand/cbcsuite/suite"
)

// suiteJSON is the printed form of a suite.
type suiteJSON struct {
	Code        string `json:"code"`
	Wire        []byte `json:"wire"`
	Name        string `json:"name"`
	KeyLen      int    `json:"key_len"`
	KeyExchange string `json:"key_exchange"`
	Cipher      string `json:"cipher"`
	Mode        string `json:"mode"`
	BlockSize   int    `json:"block_size"`
	Digest      string `json:"digest"`
}

func toSuiteJSON(s *suite.Suite) suiteJSON {
	w := s.Wire()
	return suiteJSON{
		Code:        s.CodeString(),
		Wire:        w[:],
		Name:        s.Name,
		KeyLen:      s.KeyLen,
		KeyExchange: s.KeyExchange.String(),
		Cipher:      s.Cipher.String(),
		Mode:        s.Cipher.Mode,
		BlockSize:   s.Cipher.BlockSize,
		Digest:      s.Digest.String(),
	}
}

func printJSON(c *cli.Context, v interface{}) error {
	buff, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("could not JSON marshal: %w", err)
	}
	_, err = fmt.Fprintln(c.App.Writer, string(buff))
	return err
}

func listCmd(c *cli.Context, conf *config.Config) error {
	l := log.FromContextOrDefault(c.Context)
	suites := conf.Registry().List()
	l.Debugw("listing suites", "count", len(suites))

	if c.Bool(jsonFlag.Name) {
		out := make([]suiteJSON, 0, len(suites))
		for _, s := range suites {
			out = append(out, toSuiteJSON(s))
		}
		return printJSON(c, out)
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tNAME\tKEY\tCIPHER\tDIGEST\tKEX")
	for _, s := range suites {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s (%s)\t%s\t%s\n", s.CodeString(), s.Name, s.KeyLen,
			s.Cipher, s.Cipher.Mode, s.Digest, s.KeyExchange)
	}
	return w.Flush()
}

func checkCmd(c *cli.Context, conf *config.Config) error {
	l := log.FromContextOrDefault(c.Context)
	var suites []*suite.Suite
	if c.IsSet(fileFlag.Name) {
		var err error
		suites, err = suite.LoadDefinitions(c.String(fileFlag.Name))
		if err != nil {
			return err
		}
	} else {
		suites = conf.Registry().List()
	}

	if err := suite.Validate(suites...); err != nil {
		l.Errorw("suite check failed", "suites", len(suites), "err", err)
		return cli.Exit(err.Error(), 1)
	}
	_, err := fmt.Fprintf(c.App.Writer, "%d suites checked, no inconsistency found\n", len(suites))
	return err
}

func initConfigCmd(c *cli.Context, conf *config.Config) error {
	l := log.FromContextOrDefault(c.Context)
	f := &config.File{
		LogLevel:      levelName(conf.LogLevel()),
		JSONLogs:      conf.JSONLogs(),
		MetricsAddr:   conf.MetricsAddr(),
		EntropySource: conf.EntropySource(),
	}
	pref := conf.Preference()
	if len(pref) == 0 {
		for _, s := range conf.Registry().List() {
			pref = append(pref, s.Code)
		}
	}
	for _, code := range pref {
		f.Preference = append(f.Preference, fmt.Sprintf("0x%04x", code))
	}

	path := c.String(outFlag.Name)
	if err := config.Save(path, f); err != nil {
		return err
	}
	l.Infow("configuration written", "path", path)
	_, err := fmt.Fprintf(c.App.Writer, "configuration written to %s\n", path)
	return err
}

func levelName(level int) string {
	switch level {
	case log.DebugLevel:
		return "debug"
	case log.WarnLevel:
		return "warn"
	case log.ErrorLevel:
		return "error"
	default:
		return "info"
	}
}
