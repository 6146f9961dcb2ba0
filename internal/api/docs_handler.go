package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SwaggerUI serves the Swagger UI page
func SwaggerUI(c *gin.Context) {
	html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Order Edit Service API Documentation</title>
  <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@5.9.0/swagger-ui.css" />
  <style>
    html {
      box-sizing: border-box;
      overflow: -moz-scrollbars-vertical;
      overflow-y: scroll;
    }
    *, *:before, *:after {
      box-sizing: inherit;
    }
    body {
      margin:0;
      background: #fafafa;
    }
  </style>
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5.9.0/swagger-ui-bundle.js"></script>
  <script src="https://unpkg.com/swagger-ui-dist@5.9.0/swagger-ui-standalone-preset.js"></script>
  <script>
    window.onload = function() {
      const ui = SwaggerUIBundle({
        url: "/api-docs/openapi.json",
        dom_id: '#swagger-ui',
        deepLinking: true,
        presets: [
          SwaggerUIBundle.presets.apis,
          SwaggerUIStandalonePreset
        ],
        plugins: [
          SwaggerUIBundle.plugins.DownloadUrl
        ],
        layout: "StandaloneLayout"
      });
    };
  </script>
</body>
</html>`
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// OpenAPIJSON serves the OpenAPI JSON specification
func OpenAPIJSON(c *gin.Context) {
	spec := `{
  "openapi": "3.0.0",
  "info": {
    "title": "Order Edit Service API",
    "version": "1.0.0",
    "description": "The Order Edit Service stages changes to committed orders for the admin console.\n\n**Key Features:**\n- Stage order edits as an append-only action ledger with live preview\n- One active change session per order, enforced end to end\n- Return workflow from item request through warehouse receipt\n- Exchange workflow pairing an inbound return with outbound items\n- Printable return slip PDFs\n- Publishes confirmation events to Kafka\n\n**Change Session Lifecycle:**\n1. **Pending**: Actions are staged and the preview recomputed on every call\n2. **Requested**: The session is frozen for review\n3. **Confirmed**: The committed order is atomically replaced and its version bumped\n4. **Canceled/Declined**: The ledger is discarded, the order untouched\n\n**Architecture:**\n- The committed order is never mutated while a session is open\n- Previews replay the action ledger over the committed order\n- Exchange shipping legs are keyed by exchange and return ids\n- All amounts are integer minor units in the order currency",
    "contact": {
      "name": "Commerce Platform Team"
    },
    "license": {
      "name": "Proprietary"
    }
  },
  "servers": [
    {
      "url": "http://localhost:8087",
      "description": "Local development"
    }
  ],
  "components": {
    "securitySchemes": {
      "bearerAuth": {
        "type": "http",
        "scheme": "bearer",
        "bearerFormat": "JWT"
      },
      "internalToken": {
        "type": "http",
        "scheme": "bearer",
        "description": "Opaque service-to-service token for /internal endpoints"
      }
    },
    "schemas": {
      "Error": {
        "type": "object",
        "properties": {
          "code": {"type": "string"},
          "error": {"type": "string"}
        }
      },
      "ChangeSession": {
        "type": "object",
        "properties": {
          "id": {"type": "string", "format": "uuid"},
          "order_id": {"type": "string", "format": "uuid"},
          "kind": {"type": "string", "enum": ["EDIT", "DRAFT_EDIT", "RETURN", "EXCHANGE"]},
          "status": {"type": "string", "enum": ["PENDING", "REQUESTED", "CONFIRMED", "CANCELED", "DECLINED"]},
          "actions": {"type": "array", "items": {"$ref": "#/components/schemas/Action"}},
          "created_at": {"type": "string", "format": "date-time"}
        }
      },
      "Action": {
        "type": "object",
        "properties": {
          "id": {"type": "string", "format": "uuid"},
          "kind": {"type": "string", "enum": ["ITEM_ADD", "ITEM_UPDATE", "SHIPPING_ADD", "PROMOTION_ADD", "PROMOTION_REMOVE"]},
          "reference_id": {"type": "string", "format": "uuid"},
          "quantity": {"type": "integer"},
          "unit_price_cents": {"type": "integer", "format": "int64"},
          "custom_amount_cents": {"type": "integer", "format": "int64"}
        }
      },
      "Preview": {
        "type": "object",
        "properties": {
          "order_id": {"type": "string", "format": "uuid"},
          "session_id": {"type": "string", "format": "uuid"},
          "currency": {"type": "string"},
          "items": {"type": "array", "items": {"type": "object"}},
          "shipping_methods": {"type": "array", "items": {"type": "object"}},
          "item_total_cents": {"type": "integer", "format": "int64"},
          "shipping_total_cents": {"type": "integer", "format": "int64"},
          "total_cents": {"type": "integer", "format": "int64"}
        }
      },
      "Return": {
        "type": "object",
        "properties": {
          "id": {"type": "string", "format": "uuid"},
          "order_id": {"type": "string", "format": "uuid"},
          "exchange_id": {"type": "string", "format": "uuid"},
          "status": {"type": "string", "enum": ["NONE", "ITEMS_REQUESTED", "REQUEST_CONFIRMED", "RECEIVING", "RECEIVED", "CANCELED"]},
          "items": {"type": "array", "items": {"type": "object"}}
        }
      },
      "Exchange": {
        "type": "object",
        "properties": {
          "id": {"type": "string", "format": "uuid"},
          "order_id": {"type": "string", "format": "uuid"},
          "return_id": {"type": "string", "format": "uuid"},
          "status": {"type": "string", "enum": ["PENDING", "REQUESTED", "CONFIRMED", "CANCELED"]},
          "tracking_meta": {"type": "object", "additionalProperties": {"type": "string"}}
        }
      }
    }
  },
  "security": [{"bearerAuth": []}],
  "paths": {
    "/api/orders/{id}": {
      "get": {
        "summary": "Get a committed order",
        "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}],
        "responses": {
          "200": {"description": "The committed order"},
          "404": {"description": "Order not found", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Error"}}}}
        }
      }
    },
    "/api/orders/{id}/edits": {
      "post": {
        "summary": "Start a change session",
        "description": "Opens an edit session on the order. Add ?kind=draft-edit for a draft-order edit. Fails with 409 if the order already has an active session of any kind.",
        "parameters": [
          {"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}},
          {"name": "kind", "in": "query", "schema": {"type": "string", "enum": ["draft-edit"]}}
        ],
        "responses": {
          "201": {"description": "Session created", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ChangeSession"}}}},
          "409": {"description": "Order already has an active session"}
        }
      }
    },
    "/api/orders/{id}/edits/active": {
      "get": {
        "summary": "Find the active edit session",
        "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}],
        "responses": {
          "200": {"description": "The active session"},
          "404": {"description": "No active edit"}
        }
      }
    },
    "/api/orders/{id}/changes": {
      "get": {
        "summary": "List the order's change history",
        "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}],
        "responses": {"200": {"description": "All change sessions for the order"}}
      }
    },
    "/api/orders/{id}/preview": {
      "get": {
        "summary": "Preview the order",
        "description": "The order as it would look if the active session were confirmed, or the committed order when none is active.",
        "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}],
        "responses": {"200": {"description": "Preview", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Preview"}}}}}
      }
    },
    "/api/edits/{id}/request": {
      "post": {
        "summary": "Freeze the session for review",
        "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}],
        "responses": {
          "200": {"description": "Preview of the frozen session"},
          "409": {"description": "Session already resolved"}
        }
      }
    },
    "/api/edits/{id}/confirm": {
      "post": {
        "summary": "Confirm the session",
        "description": "Atomically applies the staged changes to the committed order and bumps its version. Fails with 409 if the order changed since the session started.",
        "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}],
        "responses": {
          "200": {"description": "Preview of the now-committed state"},
          "409": {"description": "Version conflict or session already resolved"}
        }
      }
    },
    "/api/edits/{id}/cancel": {
      "post": {
        "summary": "Cancel the session",
        "description": "Discards the staged changes. Pass {\"decline\": true} to record a reviewer decline.",
        "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}],
        "responses": {
          "200": {"description": "Session canceled"},
          "409": {"description": "Session already resolved"}
        }
      }
    },
    "/api/edits/{id}/items": {
      "post": {
        "summary": "Stage an item addition",
        "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}],
        "requestBody": {
          "required": true,
          "content": {"application/json": {"schema": {
            "type": "object",
            "required": ["variant_id", "quantity"],
            "properties": {
              "variant_id": {"type": "string"},
              "quantity": {"type": "integer", "minimum": 1},
              "unit_price_cents": {"type": "integer", "format": "int64"},
              "unit_price": {"type": "string", "description": "Major-unit decimal alternative to unit_price_cents"}
            }
          }}}
        },
        "responses": {"200": {"description": "Updated preview"}}
      }
    },
    "/api/edits/{id}/items/{lineItemId}": {
      "post": {
        "summary": "Stage an item update",
        "description": "Quantity zero stages a removal; a later update with a positive quantity stages the line back.",
        "parameters": [
          {"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}},
          {"name": "lineItemId", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}
        ],
        "requestBody": {
          "required": true,
          "content": {"application/json": {"schema": {
            "type": "object",
            "properties": {
              "quantity": {"type": "integer", "minimum": 0},
              "unit_price_cents": {"type": "integer", "format": "int64"},
              "unit_price": {"type": "string", "description": "Major-unit decimal alternative to unit_price_cents"}
            }
          }}}
        },
        "responses": {"200": {"description": "Updated preview"}}
      }
    },
    "/api/edits/{id}/shipping": {
      "post": {
        "summary": "Stage a shipping method addition",
        "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}],
        "requestBody": {
          "required": true,
          "content": {"application/json": {"schema": {
            "type": "object",
            "required": ["shipping_option_id"],
            "properties": {
              "shipping_option_id": {"type": "string"},
              "custom_amount_cents": {"type": "integer", "format": "int64"},
              "custom_amount": {"type": "number", "description": "Major-unit alternative to custom_amount_cents"}
            }
          }}}
        },
        "responses": {"200": {"description": "Updated preview"}}
      }
    },
    "/api/edits/{id}/shipping/{actionId}": {
      "post": {
        "summary": "Patch a staged shipping method's amount",
        "parameters": [
          {"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}},
          {"name": "actionId", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}
        ],
        "responses": {"200": {"description": "Updated preview"}}
      },
      "delete": {
        "summary": "Remove a staged shipping method",
        "parameters": [
          {"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}},
          {"name": "actionId", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}
        ],
        "responses": {"200": {"description": "Updated preview"}}
      }
    },
    "/api/edits/{id}/promotions": {
      "post": {
        "summary": "Stage promotion additions (draft edits only)",
        "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}],
        "responses": {"200": {"description": "Updated preview"}}
      },
      "delete": {
        "summary": "Stage promotion removals (draft edits only)",
        "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}],
        "responses": {"200": {"description": "Updated preview"}}
      }
    },
    "/api/orders/{id}/returns": {
      "post": {
        "summary": "Create a return",
        "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}],
        "responses": {
          "201": {"description": "Return created", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Return"}}}},
          "409": {"description": "Order already has an active session"}
        }
      }
    },
    "/api/returns/{id}": {
      "get": {
        "summary": "Get a return",
        "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}],
        "responses": {"200": {"description": "The return"}}
      }
    },
    "/api/returns/{id}/request": {
      "post": {
        "summary": "Request items for return",
        "description": "Repeat calls accumulate requested quantities. The accumulated total per line may not exceed the committed quantity.",
        "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}],
        "responses": {"200": {"description": "Updated return"}}
      }
    },
    "/api/returns/{id}/request/confirm": {
      "post": {
        "summary": "Confirm the return request",
        "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}],
        "responses": {"200": {"description": "Updated return"}}
      }
    },
    "/api/returns/{id}/receive": {
      "post": {
        "summary": "Start receiving at the warehouse",
        "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}],
        "responses": {"200": {"description": "Updated return"}}
      }
    },
    "/api/returns/{id}/receive/items": {
      "post": {
        "summary": "Record received quantities",
        "description": "Received quantities accumulate and may exceed what was requested.",
        "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}],
        "responses": {"200": {"description": "Updated return"}}
      }
    },
    "/api/returns/{id}/receive/confirm": {
      "post": {
        "summary": "Confirm receipt and close the return",
        "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}],
        "responses": {"200": {"description": "Updated return"}}
      }
    },
    "/api/returns/{id}/cancel": {
      "post": {
        "summary": "Cancel the return",
        "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}],
        "responses": {
          "200": {"description": "Return canceled"},
          "409": {"description": "Return already closed"}
        }
      }
    },
    "/api/returns/{id}/slip": {
      "get": {
        "summary": "Download the return slip PDF",
        "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}],
        "responses": {
          "200": {"description": "PDF document", "content": {"application/pdf": {}}},
          "409": {"description": "Return has no requested items"}
        }
      }
    },
    "/api/orders/{id}/exchanges": {
      "post": {
        "summary": "Create an exchange",
        "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}],
        "responses": {
          "201": {"description": "Exchange created", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Exchange"}}}},
          "409": {"description": "Order already has an active session"}
        }
      }
    },
    "/api/exchanges/{id}": {
      "get": {
        "summary": "Get an exchange",
        "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}],
        "responses": {"200": {"description": "The exchange with its resolved return id"}}
      }
    },
    "/api/exchanges/{id}/inbound/items": {
      "post": {
        "summary": "Add inbound (return) items",
        "description": "The first call creates the exchange's linked return. The response carries the resolved return id.",
        "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}],
        "responses": {"200": {"description": "Return id and updated preview"}}
      }
    },
    "/api/exchanges/{id}/outbound/items": {
      "post": {
        "summary": "Add outbound (replacement) items",
        "description": "Out-of-stock variants are rejected unless allow_backorder is set.",
        "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}],
        "responses": {"200": {"description": "Return id and updated preview"}}
      }
    },
    "/api/exchanges/{id}/inbound/shipping": {
      "post": {
        "summary": "Set inbound shipping",
        "description": "Replaces any previously staged inbound shipping. Tracking fields merge sparsely: empty fields remove their keys.",
        "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}],
        "responses": {"200": {"description": "Return id and updated preview"}}
      }
    },
    "/api/exchanges/{id}/outbound/shipping": {
      "post": {
        "summary": "Set outbound shipping",
        "description": "Replaces any previously staged outbound shipping.",
        "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}],
        "responses": {"200": {"description": "Return id and updated preview"}}
      }
    },
    "/api/exchanges/{id}/inbound/label": {
      "post": {
        "summary": "Upload an inbound shipping label",
        "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}],
        "requestBody": {"content": {"multipart/form-data": {"schema": {"type": "object", "properties": {"file": {"type": "string", "format": "binary"}}}}}},
        "responses": {"200": {"description": "Stored label URL"}}
      }
    },
    "/api/exchanges/{id}/request": {
      "post": {
        "summary": "Freeze the exchange for review",
        "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}],
        "responses": {"200": {"description": "Return id and updated preview"}}
      }
    },
    "/api/exchanges/{id}/cancel": {
      "post": {
        "summary": "Cancel the exchange",
        "description": "Cancels the pending request when there is one, otherwise hard-cancels the exchange and its linked return.",
        "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}],
        "responses": {
          "200": {"description": "Exchange canceled"},
          "409": {"description": "Exchange already resolved"}
        }
      }
    },
    "/api/lookups/shipping-options": {
      "get": {"summary": "List shipping options", "responses": {"200": {"description": "Shipping options"}}}
    },
    "/api/lookups/stock-locations": {
      "get": {"summary": "List stock locations", "responses": {"200": {"description": "Stock locations"}}}
    },
    "/api/lookups/return-reasons": {
      "get": {"summary": "List return reasons", "responses": {"200": {"description": "Return reasons"}}}
    },
    "/api/lookups/variants": {
      "get": {
        "summary": "Search product variants",
        "parameters": [{"name": "q", "in": "query", "required": true, "schema": {"type": "string"}}],
        "responses": {"200": {"description": "Matching variants"}}
      }
    },
    "/internal/orders": {
      "post": {
        "summary": "Ingest a committed order",
        "description": "Same payload as the ORDER_CREATED Kafka event. Replays are no-ops.",
        "security": [{"internalToken": []}],
        "responses": {"201": {"description": "Order ingested"}}
      }
    },
    "/health": {
      "get": {
        "summary": "Health check",
        "security": [],
        "responses": {"200": {"description": "Service is healthy"}}
      }
    }
  }
}`
	c.Data(http.StatusOK, "application/json", []byte(spec))
}
