package cmd

import (
	"github.com/etnz/tradebook/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion returns the shell completion of the tb command line.
//
// A main package calls Completion().Complete("tb") before parsing flags, it exits when
// the shell asks for completions.
func Completion() *complete.Command {
	topics, _ := docs.GetAllTopics()
	trade := func(extra map[string]complete.Predictor) map[string]complete.Predictor {
		flags := map[string]complete.Predictor{
			"d": predict.Something,
			"t": predict.Something,
			"q": predict.Something,
			"p": predict.Something,
			"n": predict.Something,
		}
		for k, v := range extra {
			flags[k] = v
		}
		return flags
	}
	none := &complete.Command{Args: predict.Nothing}

	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"book":   predict.Files("*.jsonl"),
			"prices": predict.Files("*.json"),
			"fees":   predict.Files("*.toml"),
			"v":      predict.Nothing,
			"raw":    predict.Nothing,
		},
		Sub: map[string]*complete.Command{
			"buy":    {Flags: trade(nil)},
			"sell":   {Flags: trade(nil)},
			"edit":   {Flags: trade(map[string]complete.Predictor{"id": predict.Something, "side": predict.Set{"buy", "sell"}})},
			"rm":     {Flags: map[string]complete.Predictor{"id": predict.Something}},
			"import": {Flags: map[string]complete.Predictor{"f": predict.Files("*.csv")}},
			"export": {Flags: map[string]complete.Predictor{"f": predict.Files("*.csv")}},
			"price": {Flags: map[string]complete.Predictor{
				"t":    predict.Something,
				"p":    predict.Something,
				"from": predict.Files("*.json"),
				"path": predict.Something,
			}},
			"tx": {Flags: map[string]complete.Predictor{
				"p": predict.Set{"day", "week", "month", "quarter", "year"},
				"s": predict.Something,
				"d": predict.Something,
				"t": predict.Something,
			}},
			"holding": {Flags: map[string]complete.Predictor{"closed": predict.Nothing}},
			"summary": none,
			"risk":    none,
			"report": {Flags: map[string]complete.Predictor{
				"no-trades": predict.Nothing,
				"no-closed": predict.Nothing,
				"no-risk":   predict.Nothing,
			}},
			"fee":   {Flags: map[string]complete.Predictor{"q": predict.Something, "p": predict.Something}},
			"topic": {Args: predict.Set(topics)},
			"help":  none,
		},
	}
}
