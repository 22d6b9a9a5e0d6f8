// Package launchdash serves an interactive dashboard of SpaceX launch outcomes.
//
// Usage:
//
//	import (
//	    "github.com/spektr-org/launchdash/dashboard"
//	    "github.com/spektr-org/launchdash/dataset"
//	)
//
//	ds, err := dataset.Load(ctx, "spacex_launch_dash.csv", dataset.DefaultColumns())
//	dash := dashboard.New(ds, dashboard.DefaultSlider())
//	updates, err := dash.Dispatch(state, dashboard.SiteDropdown)
//
// The dataset is loaded once and never mutated. Each control change re-runs the
// recomputation rules subscribed to that control; every rule is a pure function
// of the control state and returns a render-ready chart configuration built by
// the engine package.
//
// All computation is local. The server package exposes the same rules over HTTP.
package launchdash
