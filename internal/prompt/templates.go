package prompt

// Default facet templates. Each user template carries the content placeholder
// that receives the document text. Structured facets instruct the model to
// answer with a bare JSON object; the orchestrator still tolerates fenced or
// prose-wrapped output.

const comprehensiveSystem = `You are an expert document analyst. You produce thorough, ` +
	`well-structured analyses and always respond with a single JSON object and nothing else.`

const comprehensiveUser = `Analyze the following document comprehensively. Respond with a JSON object
containing exactly these fields:
  "executiveSummary": a 2-3 sentence executive summary,
  "keyPoints": an array of the 3-7 most important points,
  "primaryCategory": the single best-fitting category for the document,
  "overallSentiment": one of "positive", "negative", "neutral" or "mixed",
  "recommendations": an array of actionable recommendations,
  "detailedAnalysis": a paragraph of deeper analysis.

Document:
{{CONTENT}}`

const summarySystem = `You are a professional editor. You write clear, faithful prose summaries.`

const summaryUser = `Write a concise narrative summary of the following document in at most
three paragraphs. Respond with the summary text only.

Document:
{{CONTENT}}`

const keywordsSystem = `You are a keyword extraction engine. You always respond with a single ` +
	`JSON object and nothing else.`

const keywordsUser = `Extract the most significant keywords and key phrases from the following
document. Respond with a JSON object containing exactly these fields:
  "primaryKeywords": an array of up to 10 most significant single keywords,
  "secondaryKeywords": an array of up to 10 additional relevant keywords,
  "keyPhrases": an array of up to 5 multi-word phrases central to the document.

Document:
{{CONTENT}}`

const categorizationSystem = `You are a document classification engine. You always respond with a ` +
	`single JSON object and nothing else.`

const categorizationUser = `Classify the following document. Respond with a JSON object containing
exactly these fields:
  "primaryCategory": the single best-fitting category,
  "secondaryCategories": an array of other applicable categories,
  "documentType": the kind of document (e.g. report, article, email, contract),
  "confidence": one of "high", "medium" or "low".

Document:
{{CONTENT}}`

const sentimentSystem = `You are a sentiment analysis engine. You always respond with a single ` +
	`JSON object and nothing else.`

const sentimentUser = `Assess the sentiment of the following document. Respond with a JSON object
containing exactly these fields:
  "overallSentiment": one of "positive", "negative", "neutral" or "mixed",
  "confidence": one of "high", "medium" or "low",
  "tone": a short description of the document's tone,
  "emotionalIndicators": an array of phrases from the document that signal its sentiment.

Document:
{{CONTENT}}`
