// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import "fmt"

// ValidateMessage validates a ConversationMessage according to domain rules.
//
// Validation rules:
//   - Role must be one of user, assistant, system
//
// NOT validated:
//   - Content (an empty content is accepted; the pipeline fallbacks handle it)
func ValidateMessage(msg *ConversationMessage) error {
	if msg == nil {
		return fmt.Errorf("%w: message is nil", ErrInvalidMessage)
	}

	if err := ValidateRole(msg.Role); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}

	return nil
}

// ValidateRole validates that a Role has a known value.
func ValidateRole(role Role) error {
	switch role {
	case RoleUser, RoleAssistant, RoleSystem:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidRole, role)
}

// ValidateEntry validates an IndexEntry according to domain rules.
//
// Validation rules:
//   - Id must not be empty
//   - Document must not be empty
//
// NOT validated (populated by the index layer):
//   - Vector (can be empty until the embedder runs)
//   - Hash (derived from Document at insertion time)
func ValidateEntry(entry *IndexEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidEntry)
	}

	if entry.Id == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyId)
	}

	if entry.Document == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyDocument)
	}

	return nil
}
