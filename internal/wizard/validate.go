package wizard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/amo-tech-ai/fashionos100-sub001/model"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func checkBasics(cfg model.Configuration) string {
	if strings.TrimSpace(cfg.Title) == "" {
		return "Give your event a title before continuing."
	}
	return ""
}

func checkVenue(cfg model.Configuration) string {
	if strings.TrimSpace(cfg.Location) == "" {
		return "Choose a location before continuing."
	}
	if cfg.StartDate == nil || cfg.EndDate == nil {
		return "Set both a start and end date."
	}
	if cfg.EndDate.Before(*cfg.StartDate) {
		return "The end date must not be before the start date."
	}
	return ""
}

func checkTickets(cfg model.Configuration) string {
	if len(cfg.Tickets) == 0 {
		return "Add at least one ticket tier."
	}
	for i, t := range cfg.Tickets {
		if strings.TrimSpace(t.Name) == "" {
			return fmt.Sprintf("Ticket tier %d needs a name.", i+1)
		}
		if t.Price < 0 {
			return fmt.Sprintf("Ticket %q has a negative price.", t.Name)
		}
		if t.Quantity < 0 {
			return fmt.Sprintf("Ticket %q has a negative quantity.", t.Name)
		}
	}
	return ""
}

func checkSchedule(cfg model.Configuration) string {
	if len(cfg.Schedule) == 0 {
		return "Add at least one schedule item."
	}
	for i, item := range cfg.Schedule {
		if strings.TrimSpace(item.Activity) == "" {
			return fmt.Sprintf("Schedule item %d needs an activity.", i+1)
		}
	}
	return ""
}

func checkStyle(cfg model.Configuration) string {
	if strings.TrimSpace(cfg.Style) == "" {
		return "Pick a photography style before continuing."
	}
	return ""
}

func checkScenes(maxScenes int) CheckFunc {
	return func(cfg model.Configuration) string {
		if len(cfg.Scenes) == 0 {
			return "Select at least one scene."
		}
		if len(cfg.Scenes) > maxScenes {
			return fmt.Sprintf("Select at most %d scenes.", maxScenes)
		}
		return ""
	}
}

func checkShots(cfg model.Configuration) string {
	if cfg.ShotCount < 1 {
		return "Set a shot count of at least one."
	}
	return ""
}

// checkReview runs the whole-struct validation gate before submission.
// Earlier steps vouch for their own fields, so in practice this catches
// fields edited after their step was passed.
func checkReview(cfg model.Configuration) string {
	if msg := checkBasics(cfg); msg != "" {
		return msg
	}
	if msg := checkVenue(cfg); msg != "" {
		return msg
	}
	if err := validate.Struct(cfg); err != nil {
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) && len(invalid) > 0 {
			f := invalid[0]
			return fmt.Sprintf("The %s field is not valid.", strings.ToLower(f.Field()))
		}
		return "The configuration is not complete."
	}
	return ""
}
