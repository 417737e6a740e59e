package cbcsuite

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/drand/cbcsuite/common/log"
	"github.com/drand/cbcsuite/crypto/block"
	"github.com/drand/cbcsuite/crypto/chain"
	"github.com/drand/cbcsuite/internal/config"
	"github.com/drand/cbcsuite/internal/entropy"
	"github.com/drand/cbcsuite/internal/metrics"
)

const (
	defaultBenchDuration = 3 * time.Second
	defaultBenchSize     = 16 * 1024
)

type benchJSON struct {
	Cipher         string  `json:"cipher"`
	Mode           string  `json:"mode"`
	Bytes          int64   `json:"bytes"`
	Iterations     int64   `json:"iterations"`
	Seconds        float64 `json:"seconds"`
	BytesPerSecond float64 `json:"bytes_per_second"`
}

// benchTarget resolves --suite or --cipher to an algorithm and a key length.
func benchTarget(c *cli.Context, conf *config.Config) (*block.Algorithm, int, error) {
	switch {
	case c.IsSet(suiteFlag.Name) && c.IsSet(cipherFlag.Name):
		return nil, 0, fmt.Errorf("--%s and --%s are exclusive", suiteFlag.Name, cipherFlag.Name)
	case c.IsSet(suiteFlag.Name):
		s, err := conf.Registry().Parse(c.String(suiteFlag.Name))
		if err != nil {
			return nil, 0, err
		}
		return s.Cipher, s.KeyLen, nil
	case c.IsSet(cipherFlag.Name):
		a, err := block.Find(c.String(cipherFlag.Name), append(chain.Algorithms(), block.Algorithms()...)...)
		if err != nil {
			return nil, 0, err
		}
		return a, a.KeySizes.Max, nil
	}
	return nil, 0, fmt.Errorf("one of --%s or --%s is required", suiteFlag.Name, cipherFlag.Name)
}

func benchCmd(c *cli.Context, conf *config.Config) error {
	l := log.FromContextOrDefault(c.Context)
	alg, keyLen, err := benchTarget(c, conf)
	if err != nil {
		return err
	}
	size := c.Int(sizeFlag.Name) / alg.BlockSize * alg.BlockSize
	if size <= 0 {
		return fmt.Errorf("--%s must hold at least one %d byte block", sizeFlag.Name, alg.BlockSize)
	}
	d := c.Duration(durationFlag.Name)
	if d <= 0 {
		return fmt.Errorf("--%s must be positive", durationFlag.Name)
	}

	if addr := conf.MetricsAddr(); addr != "" {
		if ln := metrics.Start(l, addr); ln != nil {
			defer ln.Close()
		}
	}

	source, err := entropySource(conf, l)
	if err != nil {
		return err
	}
	material, err := entropy.GetRandom(source, uint32(keyLen+alg.BlockSize))
	if err != nil {
		return err
	}
	ciph := alg.New()
	if err := ciph.SetKey(material[:keyLen]); err != nil {
		return err
	}
	ciph.SetIV(material[keyLen:])

	buf := make([]byte, size)
	clock := conf.Clock()
	l.Infow("benchmark starting", "cipher", alg.Name, "size", size, "duration", d)

	start := clock.Now()
	done := clock.After(d)
	var total, iterations int64
loop:
	for {
		ciph.Encrypt(buf, buf)
		total += int64(size)
		iterations++
		select {
		case <-done:
			break loop
		default:
		}
	}
	elapsed := clock.Since(start)
	metrics.CipherBytes.WithLabelValues(alg.Name, metrics.Encrypt).Add(float64(total))

	res := benchJSON{
		Cipher:     alg.Name,
		Mode:       alg.Mode,
		Bytes:      total,
		Iterations: iterations,
		Seconds:    elapsed.Seconds(),
	}
	if elapsed > 0 {
		res.BytesPerSecond = float64(total) / elapsed.Seconds()
	}
	metrics.BenchThroughput.WithLabelValues(alg.Name).Set(res.BytesPerSecond)
	l.Infow("benchmark done", "cipher", alg.Name, "bytes", total, "elapsed", elapsed)

	if c.Bool(jsonFlag.Name) {
		return printJSON(c, res)
	}
	_, err = fmt.Fprintf(c.App.Writer, "%s (%s): %d bytes in %s, %.2f MB/s\n",
		alg.Name, alg.Mode, total, elapsed, res.BytesPerSecond/1e6)
	return err
}
