package providers

import (
	"encoding/json"
	"fmt"
	"strings"

	"llm_compare/internal/config"
)

// finetuneInstruction is appended to every prompt sent to the fine-tuned
// model. It asks for a general answer first, then the fine-tuned perspective
// (new business and innovation) when the model has one.
const finetuneInstruction = `
ただし、回答については一般論＋独自の論点を提供します。ただし、ファインチューニングの結果、一般論以上のものがない場合は、一般論だけでかまいません。
一般論については、通常のウェブ検索や推論を求めます。
その先、自前（ファインチューニング）の推論を重ねて回答してください。

例えば
■質問の形式が　～　とは何ですか？という定義や概念の説明を求める場合、
一般に、～とはXXXです。　（ここでXXXには、ネットで検索できるような一般的な情報を丁寧に説明します)
 特に、新規事業やイノベーションの文脈においては、YYYという理解が重要になります。　（ここで、ファインチューニングを行った特徴的なポイントを記述します。存在しなければ、述べる必要はありません。）

■質問の形式が　～　をするにはどうですか？というやり方や手順を求める場合。
一般に～を行うにはXXXな進め方が有効です。　（ここでXXXには、ネットで検索できるような一般的な情報を丁寧に説明します)
特に、新規事業やイノベーションの文脈においては、YYYというステップが重要になります。　（ここで、ファインチューニングを行った特徴的なポイントを記述します。存在しなければ、述べる必要はありません。）
`

// NewOpenAIBackend describes the general OpenAI chat model.
func NewOpenAIBackend(creds config.Credentials, pc config.ProviderConfig) Backend {
	return Backend{
		Name:          "OpenAI",
		Label:         fmt.Sprintf("%s(OpenAI)", pc.OpenAIModel),
		Model:         pc.OpenAIModel,
		APIKey:        creds.OpenAIAPIKey,
		Endpoint:      chatCompletionsURL(pc.OpenAIBaseURL),
		MaxTokens:     maxTokens,
		Auth:          NewBearerAuth(creds.OpenAIAPIKey),
		Extract:       extractOpenAIText,
		NotConfigured: "Error: OpenAI API key not configured",
	}
}

// NewFinetunedBackend describes the fine-tuned OpenAI model. It shares the
// OpenAI key and appends finetuneInstruction to every prompt.
func NewFinetunedBackend(creds config.Credentials, pc config.ProviderConfig) Backend {
	return Backend{
		Name:          "Fine-tuned OpenAI",
		Label:         "Fine-tuned OpenAI",
		Model:         creds.FinetunedModelID,
		APIKey:        creds.OpenAIAPIKey,
		Endpoint:      chatCompletionsURL(pc.OpenAIBaseURL),
		MaxTokens:     maxTokens,
		Auth:          NewBearerAuth(creds.OpenAIAPIKey),
		Extract:       extractOpenAIText,
		Transform:     AppendFinetuneInstruction,
		NotConfigured: "Error: OpenAI API key or fine-tuned model ID not configured",
	}
}

// AppendFinetuneInstruction returns prompt followed by the fixed instruction block.
func AppendFinetuneInstruction(prompt string) string {
	return prompt + finetuneInstruction
}

func chatCompletionsURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/chat/completions"
}

// extractOpenAIText returns choices[0].message.content.
func extractOpenAIText(body []byte) (string, error) {
	var resp struct {
		Choices []struct {
			Message struct {
				Content *string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: choices", ErrMissingField)
	}
	if resp.Choices[0].Message.Content == nil {
		return "", fmt.Errorf("%w: choices[0].message.content", ErrMissingField)
	}
	return *resp.Choices[0].Message.Content, nil
}
