/*
 * ReachInbox Onebox - Copyright (C) 2024 Rangasai M.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 2, and only
 * version 2 as published by the Free Software Foundation.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program; if not, write to the Free Software
 * Foundation, Inc., 59 Temple Place, Suite 330, Boston, MA  02111-1307  USA
 */

// Package classify assigns one of a closed set of categories to an email.
package classify

import "context"

// Category is the classification outcome. The set is closed; a result
// outside it is treated as a failed attempt, never as a sixth category.
type Category string

const (
	CategoryInterested    Category = "Interested"
	CategoryMeetingBooked Category = "Meeting Booked"
	CategoryNotInterested Category = "Not Interested"
	CategorySpam          Category = "Spam"
	CategoryOutOfOffice   Category = "Out of Office"
)

// Categories lists every valid category, in schema order.
var Categories = []Category{
	CategoryInterested,
	CategoryMeetingBooked,
	CategoryNotInterested,
	CategorySpam,
	CategoryOutOfOffice,
}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// Classifier is a single classification attempt against the remote service.
type Classifier interface {
	Classify(ctx context.Context, subject string, body string) (Category, error)
}

// Service is what the ingestion pipeline consumes. The boolean is false when
// the classification is unavailable, which is a result and not an error.
type Service interface {
	Classify(ctx context.Context, subject string, body string) (Category, bool)
}
