package convo

// Prompt templates for the two LLM roles in the pipeline. The conversation
// history is passed to both as a JSON array so the model sees roles intact.

const synthesizeSystemPrompt = `You are a search query generator for an assistant that helps users ` +
	`discover places and activities in Singapore. Given the conversation so far, produce one short ` +
	`search query that captures what the user is currently looking for. Fold in constraints the user ` +
	`already mentioned, such as area, budget, or who they are going with. Respond with the query only, ` +
	`without quotes or explanation.`

const synthesizeUserPrompt = "Conversation history:\n%s\n\nSearch query:"

const clarifySystemPrompt = `You are a friendly assistant helping a user find places and activities ` +
	`in Singapore. Given the conversation so far, ask one short follow-up question that would help ` +
	`narrow down what the user is looking for, such as the preferred area, budget, or occasion. Do not ` +
	`repeat a question the user has already answered. Respond with the question only.`

const clarifyUserPrompt = "Conversation history:\n%s\n\nFollow-up question:"

// fallbackQuestion is returned whenever no chat model is configured or the
// model call fails.
const fallbackQuestion = "Could you please provide more details about what you're looking for?"

const (
	synthesizeTemperature = 0.2
	clarifyTemperature    = 0.7
	llmMaxTokens          = 100
)
