package content

// documentSchema is the structural contract every lesson document must meet
// before typed decoding. Range checks that depend on sibling fields (the
// correct answer indexing into options) are done in Go after decoding.
const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["title", "sections"],
  "properties": {
    "slug": {"type": "string", "pattern": "^[a-z0-9]+(-[a-z0-9]+)*$"},
    "title": {"type": "string", "minLength": 1},
    "description": {"type": "string"},
    "sections": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "title", "content"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "title": {"type": "string"},
          "content": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["type"],
              "properties": {
                "type": {"type": "string", "minLength": 1}
              }
            }
          }
        }
      }
    },
    "testQuestions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "question", "options", "correctAnswer", "explanation"],
        "properties": {
          "id": {"type": "integer"},
          "question": {"type": "string", "minLength": 1},
          "options": {"type": "array", "minItems": 2, "items": {"type": "string"}},
          "correctAnswer": {"type": "integer", "minimum": 0},
          "explanation": {"type": "string"}
        }
      }
    }
  }
}`
