// AngelaMos | 2026
// state.go

package view

type State string

const (
	Landing             State = "landing"
	Login               State = "login"
	Signup              State = "signup"
	StudentDashboard    State = "student-dashboard"
	InstructorDashboard State = "instructor-dashboard"
	CourseViewer        State = "course-viewer"
	CourseCreator       State = "course-creator"
	GameCenter          State = "game-center"
	Relaxation          State = "relaxation"
	Profile             State = "profile"
	Payment             State = "payment"
	About               State = "about"
	Contact             State = "contact"
	Privacy             State = "privacy"
	Terms               State = "terms"
	Careers             State = "careers"
	Help                State = "help"
)

type Access string

const (
	AccessPublic        Access = "public"
	AccessAuthenticated Access = "authenticated"
	AccessStudent       Access = "student"
	AccessInstructor    Access = "instructor"
)

const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
)

type Definition struct {
	State         State  `json:"view"`
	Access        Access `json:"access"`
	RequiresParam bool   `json:"requires_param"`
	GuestOnly     bool   `json:"guest_only"`
}

var definitions = []Definition{
	{State: Landing, Access: AccessPublic},
	{State: Login, Access: AccessPublic, GuestOnly: true},
	{State: Signup, Access: AccessPublic, GuestOnly: true},
	{State: StudentDashboard, Access: AccessStudent},
	{State: InstructorDashboard, Access: AccessInstructor},
	{State: CourseViewer, Access: AccessAuthenticated, RequiresParam: true},
	{State: CourseCreator, Access: AccessInstructor},
	{State: GameCenter, Access: AccessAuthenticated},
	{State: Relaxation, Access: AccessAuthenticated},
	{State: Profile, Access: AccessAuthenticated},
	{State: Payment, Access: AccessAuthenticated},
	{State: About, Access: AccessPublic},
	{State: Contact, Access: AccessPublic},
	{State: Privacy, Access: AccessPublic},
	{State: Terms, Access: AccessPublic},
	{State: Careers, Access: AccessPublic},
	{State: Help, Access: AccessPublic},
}

var byState = func() map[State]Definition {
	m := make(map[State]Definition, len(definitions))
	for _, d := range definitions {
		m[d.State] = d
	}
	return m
}()

// Definitions lists every view in declaration order.
func Definitions() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}

func Lookup(s State) (Definition, bool) {
	d, ok := byState[s]
	return d, ok
}

// Home is the landing view for a role; anonymous visitors get Landing.
func Home(role string) State {
	switch role {
	case RoleInstructor:
		return InstructorDashboard
	case RoleStudent:
		return StudentDashboard
	default:
		return Landing
	}
}

// Allows reports whether role may open the view. An empty role is anonymous.
func (d Definition) Allows(role string) bool {
	switch d.Access {
	case AccessPublic:
		return true
	case AccessAuthenticated:
		return role != ""
	case AccessStudent:
		return role == RoleStudent
	case AccessInstructor:
		return role == RoleInstructor
	default:
		return false
	}
}
