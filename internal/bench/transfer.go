package bench

import (
	"github.com/fxnlabs/accelbench/internal/kernels"
	"github.com/fxnlabs/accelbench/internal/sizing"
	"github.com/fxnlabs/accelbench/internal/stats"
)

const TransferSuiteName = "transfer"

// TransferSuite measures buffer copies between host and device and within a
// device. The host processor has no separate device memory, so CPU devices
// are excluded.
func TransferSuite() Suite {
	return Suite{
		Name:       TransferSuiteName,
		Sweep:      streamSweep,
		ExcludeCPU: true,
		Tests: []Test{
			{
				Name:     "host-to-device",
				Unit:     UnitGBps,
				Polarity: stats.Maximize,
				Label:    elementsLabel,
				Run:      runUpload,
			},
			{
				Name:     "device-to-host",
				Unit:     UnitGBps,
				Polarity: stats.Maximize,
				Label:    elementsLabel,
				Run:      runDownload,
			},
			{
				Name:     "device-to-device",
				Unit:     UnitGBps,
				Polarity: stats.Maximize,
				Label:    elementsLabel,
				Run:      runDeviceCopy,
			},
		},
	}
}

func runUpload(env *Env, size int) (Outcome, error) {
	n, err := sizing.Fit(int64(size), memoryFloor, 4, 1, env.Profile)
	if err != nil {
		return Outcome{}, err
	}
	host := kernels.Fill(env.Seed, 6, int(n))
	buf, err := env.Allocate(int(n))
	if err != nil {
		return Outcome{}, err
	}
	samples, err := env.Time(func() error { return buf.CopyFrom(host) })
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Effective: n, Samples: samples, Values: bandwidth(samples, n*4)}, nil
}

func runDownload(env *Env, size int) (Outcome, error) {
	n, err := sizing.Fit(int64(size), memoryFloor, 4, 1, env.Profile)
	if err != nil {
		return Outcome{}, err
	}
	buf, err := env.Upload(kernels.Fill(env.Seed, 7, int(n)))
	if err != nil {
		return Outcome{}, err
	}
	samples, err := env.Time(func() error {
		_, err := buf.ToHost()
		return err
	})
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Effective: n, Samples: samples, Values: bandwidth(samples, n*4)}, nil
}

func runDeviceCopy(env *Env, size int) (Outcome, error) {
	n, err := sizing.Fit(int64(size), memoryFloor, 4, 2, env.Profile)
	if err != nil {
		return Outcome{}, err
	}
	src, err := env.Upload(kernels.Fill(env.Seed, 8, int(n)))
	if err != nil {
		return Outcome{}, err
	}
	dst, err := env.Allocate(int(n))
	if err != nil {
		return Outcome{}, err
	}
	samples, err := env.Time(func() error { return src.CopyTo(dst) })
	if err != nil {
		return Outcome{}, err
	}
	// Bytes are read once and written once.
	return Outcome{Effective: n, Samples: samples, Values: bandwidth(samples, n*4*2)}, nil
}
