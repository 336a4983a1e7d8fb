// Package qseq searches for quaternion sequences with vanishing periodic or
// odd-periodic autocorrelation over the 16-symbol Hurwitz alphabet.
//
// The search runs in-process on a worker pool. Complete results can be
// cached in Redis or Valkey so repeated searches are answered without
// enumerating the space again.
//
//	client, _ := qseq.New(qseq.WithWorkers(8))
//	defer client.Close()
//
//	res, _ := client.Search(6).Symmetry(qseq.Palindromic).Do(ctx)
//	fmt.Println(res.Count, res.Solutions)
//
// Solutions can be consumed as they are found:
//
//	_, _ = client.Search(9).
//	    Predicate(qseq.OddPeriodic).
//	    Limit(1).
//	    Stream(ctx, func(s string) { fmt.Println(s) })
//
// Single sequences are analysed without a search:
//
//	a, _ := client.Check("J+q+J")
//	sub, ok, _ := client.Shrink("+ijZji+")
package qseq
