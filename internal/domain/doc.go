// Package domain holds the core business types shared across services.
// These types carry no behavior beyond simple derivations; persistence
// and transport concerns live in the repository and api packages.
package domain
