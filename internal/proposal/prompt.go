package proposal

import (
	"fmt"

	"proposal-generator/pkg/models"
	"proposal-generator/pkg/utils"
)

const notSpecified = "Not specified"

// BuildPrompt renders the proposal prompt. The output depends only on the request.
func BuildPrompt(req models.ProposalRequest) string {
	return fmt.Sprintf(`Generate a professional Upwork proposal for the following job posting.

Job Description:
%s

My Skills: %s
My Experience: %s

Please write a compelling, personalized proposal that:
1. Demonstrates understanding of the job requirements
2. Highlights relevant skills and experience
3. Shows enthusiasm for the project
4. Includes a clear call to action
5. Is concise and professional (around 150-200 words)

Format the proposal ready to copy and paste into Upwork.`,
		req.JobDescription,
		utils.GetStringOrDefault(req.Skills, notSpecified),
		utils.GetStringOrDefault(req.Experience, notSpecified),
	)
}
