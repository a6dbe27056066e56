package main

import (
	"flag"

	"github.com/etnz/instrument"
	"github.com/etnz/instrument/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// predictors for flags and arguments whose values are known in advance.
var (
	flagPredictors = map[string]complete.Predictor{
		"catalog-dir":      predict.Dirs("*"),
		"sqlite":           predict.Files("*.db"),
		"metrics-textfile": predict.Files("*.prom"),
		"side":             predict.Set{"buy", "sell"},
		"status":           predict.Set{"active", "inactive", "all"},
		"class":            classes(),
		"f":                predict.Files("*"),
	}
	argPredictors = map[string]complete.Predictor{
		"import": predict.Files("*.json"),
		"topic":  topics(),
	}
)

// completion returns the completion tree of the commands registered in 'commander'.
func completion(commander *subcommands.Commander) *complete.Command {
	root := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: flags(flag.CommandLine),
	}
	commander.VisitCommands(func(_ *subcommands.CommandGroup, c subcommands.Command) {
		f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(f)
		sub := &complete.Command{Flags: flags(f), Args: predict.Nothing}
		if p, ok := argPredictors[c.Name()]; ok {
			sub.Args = p
		}
		root.Sub[c.Name()] = sub
	})
	return root
}

func flags(f *flag.FlagSet) map[string]complete.Predictor {
	m := make(map[string]complete.Predictor)
	f.VisitAll(func(fl *flag.Flag) {
		p, ok := flagPredictors[fl.Name]
		if b, isBool := fl.Value.(interface{ IsBoolFlag() bool }); !ok && isBool && b.IsBoolFlag() {
			p, ok = predict.Nothing, true
		}
		if !ok {
			p = predict.Something
		}
		m[fl.Name] = p
	})
	return m
}

func classes() predict.Set {
	var set predict.Set
	for _, c := range instrument.AssetClasses {
		set = append(set, c.String())
	}
	return set
}

func topics() predict.Set {
	list, err := docs.GetAllTopics()
	if err != nil {
		return nil
	}
	return predict.Set(list)
}
