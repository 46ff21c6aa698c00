package email

import (
	"fmt"

	"github.com/devzoku/devzoku-api/internal/queue"
)

var positionLabels = map[string]string{
	"winner":         "Winner",
	"firstRunnerUp":  "1st Runner-up",
	"secondRunnerUp": "2nd Runner-up",
	"participant":    "Participant",
}

type winnerResultView struct {
	queue.WinnerResultData
	PositionLabel string
}

// BuildMessage decodes job and renders the matching template.
func BuildMessage(r *Renderer, job queue.Job) (Message, error) {
	switch job.Name {
	case queue.JobTeamRegistration:
		var data queue.TeamRegistrationData
		if err := job.Decode(&data); err != nil {
			return Message{}, err
		}
		html, text, err := r.Render(string(job.Name), data)
		if err != nil {
			return Message{}, err
		}
		return Message{
			To:      data.To,
			Subject: fmt.Sprintf("You're registered for %s", data.HackathonTitle),
			HTML:    html,
			Text:    text,
		}, nil

	case queue.JobWinnerResult:
		var data queue.WinnerResultData
		if err := job.Decode(&data); err != nil {
			return Message{}, err
		}
		label, ok := positionLabels[data.Position]
		if !ok {
			label = data.Position
		}
		html, text, err := r.Render(string(job.Name), winnerResultView{WinnerResultData: data, PositionLabel: label})
		if err != nil {
			return Message{}, err
		}
		return Message{
			To:      data.To,
			Subject: fmt.Sprintf("Results are out for %s", data.HackathonTitle),
			HTML:    html,
			Text:    text,
		}, nil
	}

	return Message{}, fmt.Errorf("unknown email job %q", job.Name)
}
