// AngelaMos | 2026
// router.go

package view

import (
	"net/url"
	"strings"
)

type Route struct {
	State State  `json:"view"`
	Param string `json:"param,omitempty"`
}

// Hash renders the route as a location fragment, e.g. "#course-viewer/42".
func (r Route) Hash() string {
	if r.Param == "" {
		return "#" + string(r.State)
	}
	return "#" + string(r.State) + "/" + url.PathEscape(r.Param)
}

// Parse reads "#slug" or "#slug/param". The second result is false when the
// slug names no known view.
func Parse(hash string) (Route, bool) {
	h := strings.TrimSpace(hash)
	h = strings.TrimPrefix(h, "#")
	h = strings.Trim(h, "/")
	if h == "" {
		return Route{}, false
	}

	slug, param, _ := strings.Cut(h, "/")
	if unescaped, err := url.PathUnescape(param); err == nil {
		param = unescaped
	}

	state := State(strings.ToLower(slug))
	if _, ok := Lookup(state); !ok {
		return Route{State: state, Param: param}, false
	}
	return Route{State: state, Param: param}, true
}

const (
	ReasonNone          = ""
	ReasonUnknown       = "unknown_view"
	ReasonLoginRequired = "login_required"
	ReasonForbidden     = "wrong_role"
	ReasonMissingParam  = "missing_param"
	ReasonSignedIn      = "already_signed_in"
)

type Decision struct {
	Route      Route  `json:"route"`
	Hash       string `json:"hash"`
	Redirected bool   `json:"redirected"`
	Reason     string `json:"reason,omitempty"`
	ReturnTo   string `json:"return_to,omitempty"`
}

// Resolve decides which view to show for hash given the viewer's role
// (empty for anonymous visitors).
func Resolve(hash, role string) Decision {
	route, known := Parse(hash)
	home := Route{State: Home(role)}

	if !known {
		if strings.Trim(strings.TrimSpace(hash), "#/") == "" {
			return decide(home, false, ReasonNone, "")
		}
		return decide(home, true, ReasonUnknown, "")
	}

	def, _ := Lookup(route.State)
	switch {
	case def.GuestOnly && role != "":
		return decide(home, true, ReasonSignedIn, "")
	case !def.Allows(role) && role == "":
		return decide(Route{State: Login}, true, ReasonLoginRequired, route.Hash())
	case !def.Allows(role):
		return decide(home, true, ReasonForbidden, "")
	case def.RequiresParam && route.Param == "":
		return decide(home, true, ReasonMissingParam, "")
	}

	if !def.RequiresParam {
		route.Param = ""
	}
	return decide(route, false, ReasonNone, "")
}

func decide(r Route, redirected bool, reason, returnTo string) Decision {
	return Decision{
		Route:      r,
		Hash:       r.Hash(),
		Redirected: redirected,
		Reason:     reason,
		ReturnTo:   returnTo,
	}
}
