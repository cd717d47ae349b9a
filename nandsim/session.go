/*
 session.go

 GNU GENERAL PUBLIC LICENSE
 Version 3, 29 June 2007
 Copyright (C) 2024 Jack Ng <jack.ng.ca@gmail.com>

 This program is free software: you can redistribute it and/or modify
 it under the terms of the GNU General Public License as published by
 the Free Software Foundation, either version 3 of the License, or
 (at your option) any later version.

 This program is distributed in the hope that it will be useful,
 but WITHOUT ANY WARRANTY; without even the implied warranty of
 MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 GNU General Public License for more details.

 You should have received a copy of the GNU General Public License
 along with this program.  If not, see <https://www.gnu.org/licenses/> */

package nandsim

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Session tags one run against a SimDriver or MmapDriver with a stable
// identifier, so log lines and dumped stats from concurrent or sequential
// test runs against the same device image can be told apart.
type Session struct {
	ID      uuid.UUID
	log     *logrus.Entry
}

// NewSession mints a fresh Session and a logger pre-tagged with its ID.
func NewSession() *Session {
	id := uuid.New()
	return &Session{
		ID:  id,
		log: logrus.WithField("session", id.String()),
	}
}

// Log returns the session-tagged logger entry callers should use for any
// diagnostic output tied to this run.
func (s *Session) Log() *logrus.Entry { return s.log }
