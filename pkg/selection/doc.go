/*
Package selection implements the per-user selection state machine and the
group editor sub-machine.

Every transition is a function from a session value (plus the read-only
Catalog) to a new session value and an Effect telling the caller what to do
next. Nothing here locks, fetches or persists; the caller runs transitions
inside session.Manager.Update so they apply atomically per user.

	idle --set source--> selecting --search--> awaiting filter --text--> selecting
	  ^                      |
	  +----- set source -----+ (full reset, from any state)
*/
package selection
