// Package surv implements the survival estimators of the pipeline:
// the Kaplan-Meier product-limit estimator with Greenwood variance and
// log-log confidence intervals, a Cox proportional-hazards fit with
// Efron tie handling, and a Schoenfeld-residual test of the
// proportional-hazards assumption.
//
// Inputs are parallel slices of follow-up times and 0/1 event flags (a
// censored subject contributes to risk sets only, never to failure
// counts). All estimators are deterministic and single-threaded.
package surv
