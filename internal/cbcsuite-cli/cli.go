// Package cbcsuite is the command line front end: it lists and checks the
// registered cipher suites, encrypts and decrypts files with them, runs the
// negotiation logic and measures cipher throughput.
package cbcsuite

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/urfave/cli/v2"

	"github.com/drand/cbcsuite/common"
	"github.com/drand/cbcsuite/common/log"
	"github.com/drand/cbcsuite/internal/config"
)

var SetVersionPrinter sync.Once

func banner(w io.Writer) {
	version := common.GetAppVersion()
	_, _ = fmt.Fprintf(w, "cbcsuite %s (date %v, commit %v)\n", version.String(),
		orUnset(common.BUILDDATE), orUnset(common.COMMIT))
}

func orUnset(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

var verboseFlag = &cli.BoolFlag{
	Name:    "verbose",
	Usage:   "If set, verbosity is at the debug level",
	EnvVars: []string{"CBCSUITE_VERBOSE"},
}

var jsonLogsFlag = &cli.BoolFlag{
	Name:    "json-logs",
	Usage:   "Write logs as JSON instead of the console format.",
	EnvVars: []string{"CBCSUITE_JSON_LOGS"},
}

var configFlag = &cli.StringFlag{
	Name:    "config",
	Usage:   "TOML configuration file. Command line flags take precedence over its values.",
	EnvVars: []string{"CBCSUITE_CONFIG"},
}

var jsonFlag = &cli.BoolFlag{
	Name:    "json",
	Usage:   "Print the result as JSON, byte strings hex encoded.",
	EnvVars: []string{"CBCSUITE_JSON"},
}

var suiteFlag = &cli.StringFlag{
	Name:    "suite",
	Usage:   "Cipher suite, by name or by 0xNNNN code.",
	EnvVars: []string{"CBCSUITE_SUITE"},
}

var cipherFlag = &cli.StringFlag{
	Name:  "cipher",
	Usage: "Cipher to benchmark directly, e.g. aes_cbc, blowfish_cbc or aes for the raw block cipher.",
}

var keyFlag = &cli.StringFlag{
	Name:     "key",
	Usage:    "Hex encoded key, of the suite's key length.",
	Required: true,
	EnvVars:  []string{"CBCSUITE_KEY"},
}

var ivFlag = &cli.StringFlag{
	Name: "iv",
	Usage: "Hex encoded IV of one cipher block. When set, the IV is neither written " +
		"in front of the ciphertext by encrypt nor read from the input by decrypt.",
}

var inFlag = &cli.StringFlag{
	Name:     "in",
	Usage:    "Input file.",
	Required: true,
}

var outFlag = &cli.StringFlag{
	Name:     "out",
	Usage:    "Output file, created with owner-only permissions.",
	Required: true,
}

var noPaddingFlag = &cli.BoolFlag{
	Name:  "no-padding",
	Usage: "Do not pad or unpad: the input must be a whole number of cipher blocks.",
}

var entropySourceFlag = &cli.StringFlag{
	Name:    "entropy-source",
	Usage:   "File to read keys from instead of crypto/rand, e.g. /dev/urandom. IVs mix it with crypto/rand.",
	EnvVars: []string{"CBCSUITE_ENTROPY_SOURCE"},
}

var offerFlag = &cli.StringFlag{
	Name:     "offer",
	Usage:    "Comma separated suites offered by the peer, by 0xNNNN code or name.",
	Required: true,
}

var preferFlag = &cli.StringFlag{
	Name:    "prefer",
	Usage:   "Comma separated local preference order, overriding the configuration file.",
	EnvVars: []string{"CBCSUITE_PREFER"},
}

var fileFlag = &cli.StringFlag{
	Name:  "file",
	Usage: "TOML file of [[suite]] definitions to check instead of the built-in table.",
}

var durationFlag = &cli.DurationFlag{
	Name:  "duration",
	Usage: "How long to run the benchmark.",
	Value: defaultBenchDuration,
}

var sizeFlag = &cli.IntFlag{
	Name:  "size",
	Usage: "Size in bytes of the buffer encrypted at each iteration, rounded down to whole blocks.",
	Value: defaultBenchSize,
}

var metricsFlag = &cli.StringFlag{
	Name:    "metrics",
	Usage:   "Serve metrics at the specified (host:)port while the command runs.",
	EnvVars: []string{"CBCSUITE_METRICS"},
}

var appCommands = []*cli.Command{
	{
		Name:   "list",
		Usage:  "List the registered cipher suites.",
		Flags:  toArray(jsonFlag),
		Action: withConfig("listCmd", listCmd),
	},
	{
		Name:   "check",
		Usage:  "Check every suite for inconsistencies between its name and its algorithms.",
		Flags:  toArray(fileFlag),
		Action: withConfig("checkCmd", checkCmd),
	},
	{
		Name:  "encrypt",
		Usage: "Encrypt a file with a suite's cipher. Without --iv, a random IV is written in front of the ciphertext.",
		Flags: toArray(suiteFlag, keyFlag, ivFlag, inFlag, outFlag, noPaddingFlag,
			entropySourceFlag, jsonFlag),
		Action: withConfig("encryptCmd", encryptCmd),
	},
	{
		Name:   "decrypt",
		Usage:  "Decrypt a file produced by encrypt.",
		Flags:  toArray(suiteFlag, keyFlag, ivFlag, inFlag, outFlag, noPaddingFlag, jsonFlag),
		Action: withConfig("decryptCmd", decryptCmd),
	},
	{
		Name:   "negotiate",
		Usage:  "Pick the suite a server would select given the peer's offer.",
		Flags:  toArray(offerFlag, preferFlag, jsonFlag),
		Action: withConfig("negotiateCmd", negotiateCmd),
	},
	{
		Name:  "bench",
		Usage: "Measure the encryption throughput of a suite or cipher.",
		Flags: toArray(suiteFlag, cipherFlag, durationFlag, sizeFlag, metricsFlag,
			entropySourceFlag, jsonFlag),
		Action: withConfig("benchCmd", benchCmd),
	},
	{
		Name:   "init-config",
		Usage:  "Write a configuration file holding the current settings.",
		Flags:  toArray(outFlag),
		Action: withConfig("initConfigCmd", initConfigCmd),
	},
}

// CLI returns the cbcsuite app. opts are applied after the configuration
// file and the flags.
func CLI(opts ...config.ConfigOption) *cli.App {
	version := common.GetAppVersion()

	app := cli.NewApp()
	app.Name = "cbcsuite"

	SetVersionPrinter.Do(func() {
		cli.VersionPrinter = func(c *cli.Context) {
			banner(c.App.Writer)
		}
	})

	app.ExitErrHandler = func(context *cli.Context, err error) {
		// override to prevent default behavior of calling OS.exit(1),
		// when tests expect to be able to run multiple commands.
	}
	app.Version = version.String()
	app.Usage = "cipher suites over chained block ciphers"
	// we need to copy the underlying commands to avoid races, cli sadly doesn't support concurrent executions well
	appComm := make([]*cli.Command, len(appCommands))
	for i, p := range appCommands {
		v := *p
		appComm[i] = &v
	}
	app.Commands = appComm
	verbFlag, jsonLogs, confFlag := *verboseFlag, *jsonLogsFlag, *configFlag
	app.Flags = toArray(&verbFlag, &jsonLogs, &confFlag)
	app.Metadata = map[string]interface{}{optionsKey: opts}
	return app
}

const optionsKey = "options"

type action func(c *cli.Context, conf *config.Config) error

// withConfig builds the config of the command and attaches its named logger
// to c.Context, where actions fetch it with log.FromContextOrDefault.
func withConfig(name string, a action) cli.ActionFunc {
	return func(c *cli.Context) error {
		conf, err := contextToConfig(c)
		if err != nil {
			return err
		}
		c.Context = log.ToContext(c.Context, conf.Logger().Named(name))
		return a(c, conf)
	}
}

func contextToConfig(c *cli.Context) (*config.Config, error) {
	opts := []config.ConfigOption{config.WithLogLevel(log.ErrorLevel)}
	extra, _ := c.App.Metadata[optionsKey].([]config.ConfigOption)

	if c.IsSet(configFlag.Name) {
		f, err := config.Load(c.String(configFlag.Name))
		if err != nil {
			return nil, err
		}
		fileOpts, err := f.Options(config.NewConfig(extra...).Registry())
		if err != nil {
			return nil, err
		}
		opts = append(opts, fileOpts...)
	}
	if c.Bool(verboseFlag.Name) {
		opts = append(opts, config.WithLogLevel(log.DebugLevel))
	}
	if c.IsSet(jsonLogsFlag.Name) {
		opts = append(opts, config.WithJSONLogs(c.Bool(jsonLogsFlag.Name)))
	}
	if c.IsSet(metricsFlag.Name) {
		opts = append(opts, config.WithMetricsAddr(c.String(metricsFlag.Name)))
	}
	if c.IsSet(entropySourceFlag.Name) {
		opts = append(opts, config.WithEntropySource(c.String(entropySourceFlag.Name)))
	}
	opts = append(opts, extra...)
	conf := config.NewConfig(opts...)

	if c.IsSet(preferFlag.Name) {
		pref, err := config.ParsePreference(conf.Registry(), splitList(c.String(preferFlag.Name)))
		if err != nil {
			return nil, err
		}
		config.WithPreference(pref)(conf)
	}
	return conf, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func toArray(flags ...cli.Flag) []cli.Flag {
	return flags
}
