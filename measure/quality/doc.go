// Package quality computes objective speech-enhancement metrics comparing a
// clean reference signal with an enhanced signal, and averages them over
// batches of signal pairs.
//
// Metrics:
//
//   - SNR: signal-to-noise ratio of the reference against the residual (dB)
//   - SI-SDR: scale-invariant signal-to-distortion ratio (dB)
//   - PESQ: ITU-T P.862 perceptual quality, delegated to a [PESQScorer]
//   - STOI: short-time objective intelligibility, delegated to a [STOIScorer]
//
// SNR and SI-SDR are computed in-process. PESQ and STOI are computed by
// external scorers reached through a [Capability], which probes the PESQ
// scorer once, warns once when it is missing, and turns scorer failures into
// tagged [Outcome] values instead of errors. The [Evaluator] decides per
// metric, through a [FailurePolicy], whether a failed outcome is dropped from
// the mean or counted as zero.
//
// # Usage
//
//	capability := quality.NewCapability(
//		quality.WithPESQProbe(external.PESQProbe(external.Config{Command: "pesq-score"})),
//		quality.WithLogger(logger),
//	)
//	eval := quality.NewEvaluator(capability, quality.WithSampleRate(16000))
//	res, err := eval.Evaluate(cleanBatch, enhancedBatch)
//	fmt.Println(res) // snr=12.31 si_sdr=11.87 pesq=2.94 stoi=0.91
package quality
