package domain

import "strings"

// State is an onboarding milestone.
type State string

const (
	StateNew           State = "NEW"
	StateLicenseAgreed State = "LICENSE_AGREED"
	StateAccountLinked State = "ACCOUNT_LINKED"
	StateTaskAssigned  State = "TASK_ASSIGNED"
	StateTaskCompleted State = "TASK_COMPLETED"
)

// Event drives a milestone transition.
type Event string

const (
	EventAgreeLicense    Event = "AGREE_LICENSE"
	EventLinkAccount     Event = "LINK_ACCOUNT"
	EventAssignFirstTask Event = "ASSIGN_FIRST_TASK"
	EventCompleteTask    Event = "COMPLETE_TASK"
)

// Action names the side effect the orchestrator performs after a transition
// is persisted.
type Action string

const (
	ActionNone                Action = "none"
	ActionRequestAccountLogin Action = "request-account-login"
	ActionAnnounceTask        Action = "announce-task"
	ActionCongratulate        Action = "congratulate"
)

// Transition is one row of the workflow table.
type Transition struct {
	From    State
	Event   Event
	To      State
	Action  Action
	Guarded bool
}

type transitionKey struct {
	from  State
	event Event
}

var transitions = map[transitionKey]Transition{
	{StateNew, EventAgreeLicense}: {
		From: StateNew, Event: EventAgreeLicense, To: StateLicenseAgreed, Action: ActionRequestAccountLogin,
	},
	{StateLicenseAgreed, EventLinkAccount}: {
		From: StateLicenseAgreed, Event: EventLinkAccount, To: StateAccountLinked, Action: ActionNone, Guarded: true,
	},
	{StateAccountLinked, EventAssignFirstTask}: {
		From: StateAccountLinked, Event: EventAssignFirstTask, To: StateTaskAssigned, Action: ActionAnnounceTask,
	},
	{StateTaskAssigned, EventCompleteTask}: {
		From: StateTaskAssigned, Event: EventCompleteTask, To: StateTaskCompleted, Action: ActionCongratulate,
	},
}

// States lists every milestone in workflow order.
func States() []State {
	return []State{StateNew, StateLicenseAgreed, StateAccountLinked, StateTaskAssigned, StateTaskCompleted}
}

// Lookup returns the transition for event in state, or an illegal-transition
// error.
func Lookup(state State, event Event) (Transition, error) {
	transition, ok := transitions[transitionKey{from: state, event: event}]
	if !ok {
		return Transition{}, illegalTransition(state, event)
	}
	return transition, nil
}

// LinkFacts carries the externally observed facts the LINK_ACCOUNT guard
// needs. HeldBy is the chat identity already holding Login, if any.
type LinkFacts struct {
	Login         string
	AccountExists bool
	HeldBy        string
}

// Apply evaluates event against c. On success it returns the advanced
// contributor and the transition taken; on failure c is returned unchanged.
func Apply(c Contributor, event Event, facts LinkFacts) (Contributor, Transition, error) {
	transition, err := Lookup(c.Milestone, event)
	if err != nil {
		return c, Transition{}, err
	}

	next := c
	if event == EventLinkAccount {
		login := normalizeLogin(facts.Login)
		if login == "" {
			return c, Transition{}, invalidArgument("account login is required")
		}
		if !facts.AccountExists {
			return c, Transition{}, unknownAccount(login)
		}
		if holder := strings.TrimSpace(facts.HeldBy); holder != "" && holder != c.ChatUserID {
			return c, Transition{}, conflictingLinkedAccount(login)
		}
		next.LinkedAccountLogin = login
	}
	next.Milestone = transition.To
	return next, transition, nil
}

// Reachable lists the milestones reachable from state by legal events,
// excluding state itself.
func Reachable(state State) []State {
	seen := map[State]bool{state: true}
	var reached []State
	queue := []State{state}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for key, transition := range transitions {
			if key.from != current || seen[transition.To] {
				continue
			}
			seen[transition.To] = true
			reached = append(reached, transition.To)
			queue = append(queue, transition.To)
		}
	}
	return reached
}

// IsTerminal reports whether no event is legal in state.
func IsTerminal(state State) bool {
	for key := range transitions {
		if key.from == state {
			return false
		}
	}
	return true
}
