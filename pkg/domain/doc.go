/*
Package domain contains the core domain models of the rulecraft assistant.

It defines the entities shared by the parser, the selection state machine and the
configuration synthesizer. This package is kept pure and free of external dependencies
like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - ProxyNode: One parsed proxy descriptor line.
  - SelectionSession: The per-user accumulated selection (source, chosen categories, paging, filter).
  - GroupEditSession: The per-user working copy of a category group being edited.
  - CategoryGroup: A named bundle of categories that can be toggled as a unit.
  - Action: A user interaction (button press) decoded from the transport.
  - View: The render model handed to the transport to draw the choice surface.
*/
package domain
