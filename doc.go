// Package adapt implements self-training domain adaptation for statistical
// constituency parsers.
//
// A parser trained on a small in-domain seed treebank labels a larger pool of
// sentences; the automatically labeled trees are merged with the seed and the
// parser is retrained on the union, then scored against a held-out test bank.
//
// # Quick Start
//
//	engine := pcfg.New()
//	a := adapt.New(engine, adapt.WithWorkers(4))
//
//	run := a.NewRun()
//	if err := run.Execute(ctx, seed, pool); err != nil {
//	    log.Fatal(err)
//	}
//	report, err := a.Evaluate(ctx, run.FinalModel(), test)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(report)
//
// # Gold Trees
//
// Only the word sequence of each pool tree is shown to the parser. The pool's
// gold structure never reaches training or evaluation.
//
// # Thread Safety
//
// Adapter holds no mutable state and is safe for concurrent use. A Run drives
// a single experiment and must not be executed concurrently.
package adapt
