// Code generated by "stringer -type=EventType"; committed by hand here
// since this module does not invoke go generate as part of its build.
// DO NOT EDIT without keeping it in sync with the EventType constants
// in event.go.

package vmi

import "strconv"

func (i EventType) String() string {
	switch i {
	case EventInvalid:
		return "EventInvalid"
	case EventMemory:
		return "EventMemory"
	case EventRegister:
		return "EventRegister"
	case EventSinglestep:
		return "EventSinglestep"
	case EventInterrupt:
		return "EventInterrupt"
	case EventGuestRequest:
		return "EventGuestRequest"
	case EventCPUID:
		return "EventCPUID"
	case EventDebugException:
		return "EventDebugException"
	case EventPrivilegedCall:
		return "EventPrivilegedCall"
	case EventDescriptorAccess:
		return "EventDescriptorAccess"
	case EventFailedEmulation:
		return "EventFailedEmulation"
	case EventDomainWatch:
		return "EventDomainWatch"
	default:
		return "EventType(" + strconv.FormatUint(uint64(i), 10) + ")"
	}
}
