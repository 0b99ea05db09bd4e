// Package automation runs batches of simulations: YAML scenarios that chain
// preset-based runs, and sweeps of a single physical parameter.
//
// A scenario file looks like:
//
//	name: regimes
//	steps:
//	  - name: light
//	    preset: underdamped
//	    config:
//	      t1: 5
//	    save: true
//	  - preset: critical
package automation
