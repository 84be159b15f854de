/*
Package domain contains the core domain models for the Espalier engine.

It defines the fundamental entities of the flow graph — Blocks, Buttons,
Rules — along with the per-user Session state and the transport-agnostic
Render descriptor. This package is kept pure and free of external
dependencies like I/O or persistence, following Hexagonal Architecture
principles.

# Key Entities

  - Block: a node in the flow graph; one of Message, Menu, or MesMenu.
  - Button: a labeled transition owned by a Menu or MesMenu block.
  - Rules: per-block rendering directives (hide_on_next, replace_menu).
  - Session: a per-user mutable pointer into the flow graph.
  - Render: what the transport should present for a single step.
*/
package domain
