// Package external adapts scoring executables to the quality scorer
// interfaces.
//
// The executable receives one JSON request on stdin,
//
//	{"metric":"pesq","sample_rate":16000,"mode":"wb","reference":[...],"degraded":[...]}
//
// and prints the score as the last whitespace-separated field on stdout.
// Tools that print a label before the number ("MOS-LQO: 3.41") are accepted.
//
// # Usage
//
//	cfg := external.Config{Command: "pesq-score", Timeout: 30 * time.Second}
//	capability := quality.NewCapability(
//		quality.WithPESQProbe(external.PESQProbe(cfg)),
//		quality.WithSTOIScorer(external.NewSTOI(external.Config{Command: "stoi-score"})),
//	)
package external
