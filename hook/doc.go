// Package hook runs ordered callbacks at the extension points of a mapping
// pass.
//
// Callbacks registered for the same Phase compose left to right: each one
// receives the value returned by the previous one. Returning Skip stops the
// chain and tells the caller to skip the current step.
//
//	p := hook.New().
//	    On(hook.BeforeWrite, func(v any, ctx *hook.Context) any {
//	        if ctx.Key == "password" {
//	            return hook.Skip
//	        }
//	        return v
//	    })
package hook
